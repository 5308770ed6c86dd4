package logging

import (
	"fmt"

	"github.com/openHPI/namestore/pkg/dto"
	"github.com/sirupsen/logrus"
)

// ContextHook adds the request id and the full name of the entry's context to its data.
// Fields that were set explicitly win over context values.
type ContextHook struct{}

func (hook *ContextHook) Fire(entry *logrus.Entry) error {
	if entry.Context == nil {
		return nil
	}
	for _, key := range dto.LoggedContextKeys {
		field := string(key)
		if _, set := entry.Data[field]; set {
			continue
		}
		switch value := entry.Context.Value(key).(type) {
		case nil:
		case string:
			entry.Data[field] = RemoveNewlineSymbol(value)
		default:
			entry.Data[field] = RemoveNewlineSymbol(fmt.Sprint(value))
		}
	}
	return nil
}

func (hook *ContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
