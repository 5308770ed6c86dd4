package namestore

import (
	"strings"
	"sync"
	"testing"

	"github.com/openHPI/namestore/tests"
	"github.com/stretchr/testify/suite"
)

func TestNameStoreTestSuite(t *testing.T) {
	suite.Run(t, new(NameStoreTestSuite))
}

type NameStoreTestSuite struct {
	tests.MemoryLeakTestSuite
	store *NameStore
}

func (s *NameStoreTestSuite) SetupTest() {
	s.MemoryLeakTestSuite.SetupTest()
	s.store = NewNameStore()
}

func (s *NameStoreTestSuite) TestNewStoreIsEmpty() {
	s.Equal(0, s.store.Size())
	s.NotNil(s.store.FindAll())
	s.Empty(s.store.FindAll())
}

func (s *NameStoreTestSuite) TestAddedNameCanBeFoundInAnyCase() {
	s.True(s.store.Add(tests.DefaultFullName))

	for _, variant := range []string{tests.DefaultFullName, "john doe", "JOHN DOE", "jOhN dOe"} {
		name, ok := s.store.Find(variant)
		s.True(ok, variant)
		s.Equal(tests.DefaultFullName, name, "Find should return the stored spelling")
	}
}

func (s *NameStoreTestSuite) TestAddingTwiceOnlyStoresOnce() {
	s.True(s.store.Add(tests.DefaultFullName))
	s.False(s.store.Add(tests.DefaultFullName))
	s.Equal(1, s.store.Size())
}

func (s *NameStoreTestSuite) TestAddIsCaseInsensitive() {
	s.True(s.store.Add(tests.DefaultFullName))
	s.False(s.store.Add("john doe"))
	s.Equal(1, s.store.Size())
	s.Equal([]string{tests.DefaultFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestAddAppendsInInsertionOrder() {
	s.True(s.store.Add(tests.DefaultFullName))
	s.True(s.store.Add(tests.AnotherFullName))
	s.True(s.store.Add("alice liddell"))
	s.Equal([]string{tests.DefaultFullName, tests.AnotherFullName, "alice liddell"}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestFindReturnsFalseForUnknownName() {
	s.store.Add(tests.DefaultFullName)
	name, ok := s.store.Find(tests.NonExistingName)
	s.False(ok)
	s.Empty(name)
}

func (s *NameStoreTestSuite) TestFindReturnsFirstMatch() {
	s.store.SetNames([]string{"JOHN DOE", tests.DefaultFullName})
	name, ok := s.store.Find(tests.DefaultFullName)
	s.True(ok)
	s.Equal("JOHN DOE", name)
}

func (s *NameStoreTestSuite) TestRemoveAfterAdd() {
	s.store.Add(tests.DefaultFullName)
	s.True(s.store.Remove(tests.DefaultFullName))

	_, ok := s.store.Find(tests.DefaultFullName)
	s.False(ok)
	s.Equal(0, s.store.Size())
}

func (s *NameStoreTestSuite) TestRemoveAbsentNameLeavesStoreUnchanged() {
	s.store.Add(tests.DefaultFullName)
	s.False(s.store.Remove(tests.NonExistingName))
	s.Equal(1, s.store.Size())
	s.Equal([]string{tests.DefaultFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestRemovePreservesOrderOfRemainingNames() {
	s.store.SetNames([]string{"A One", tests.DefaultFullName, "B Two", "C Three"})
	s.True(s.store.Remove(tests.DefaultFullName))
	s.Equal([]string{"A One", "B Two", "C Three"}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestRemoveIsCaseInsensitive() {
	s.store.Add(tests.DefaultFullName)
	s.True(s.store.Remove("JOHN DOE"))
	s.Equal(0, s.store.Size())
}

func (s *NameStoreTestSuite) TestRemoveDeletesAllCaseVariants() {
	s.store.SetNames([]string{tests.DefaultFullName, tests.AnotherFullName, "john doe", tests.DefaultFullName})
	s.True(s.store.Remove(tests.DefaultFullName))
	s.Equal([]string{tests.AnotherFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestSetNamesReplacesPreviousState() {
	s.store.Add("Old Name")
	input := []string{tests.AnotherFullName, tests.DefaultFullName}
	s.store.SetNames(input)
	s.Equal(input, s.store.FindAll())
	s.Equal(2, s.store.Size())
}

func (s *NameStoreTestSuite) TestSetNamesWithNilEmptiesStore() {
	s.store.Add(tests.DefaultFullName)
	s.store.SetNames(nil)
	s.Equal(0, s.store.Size())
	s.NotNil(s.store.FindAll())
}

func (s *NameStoreTestSuite) TestSetNamesDoesNotEnforceUniqueness() {
	s.store.SetNames([]string{tests.DefaultFullName, "john doe", tests.DefaultFullName})
	s.Equal(3, s.store.Size())
}

func (s *NameStoreTestSuite) TestSetNamesCopiesInput() {
	input := []string{tests.DefaultFullName}
	s.store.SetNames(input)
	input[0] = "Changed Outside"

	s.Equal([]string{tests.DefaultFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestFindAllReturnsSnapshot() {
	s.store.Add(tests.DefaultFullName)
	names := s.store.FindAll()
	names[0] = "Changed Outside"
	names = append(names, "Appended Outside")

	s.Len(names, 2)
	s.Equal([]string{tests.DefaultFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestClearEmptiesStore() {
	s.store.SetNames([]string{tests.DefaultFullName, tests.AnotherFullName})
	s.store.Clear()
	s.Equal(0, s.store.Size())
	s.Empty(s.store.FindAll())

	s.Run("store is usable after clear", func() {
		s.True(s.store.Add(tests.DefaultFullName))
		s.Equal(1, s.store.Size())
	})
}

func (s *NameStoreTestSuite) TestFindByFirstAndLastName() {
	s.store.SetNames([]string{tests.AnotherFullName, tests.DefaultFullName})
	s.Equal([]string{tests.AnotherFullName}, s.store.FindByFirstName(tests.AnotherFirstName))
	s.Equal([]string{tests.DefaultFullName}, s.store.FindByLastName(tests.DefaultLastName))
}

func (s *NameStoreTestSuite) TestFindByFirstNameReturnsAllMatches() {
	s.store.SetNames([]string{tests.DefaultFullName, tests.AnotherFullName, tests.UpdatedFullName})
	s.Equal([]string{tests.DefaultFullName, tests.UpdatedFullName}, s.store.FindByFirstName(tests.DefaultFirstName))
}

func (s *NameStoreTestSuite) TestFindByNameIsCaseSensitive() {
	s.store.Add(tests.DefaultFullName)
	s.Empty(s.store.FindByFirstName("john"))
	s.Empty(s.store.FindByLastName("doe"))
}

func (s *NameStoreTestSuite) TestFindByNameMatchesWholeToken() {
	s.store.Add(tests.DefaultFullName)
	s.Empty(s.store.FindByFirstName("Jo"))
	s.Empty(s.store.FindByLastName("Do"))
	s.Empty(s.store.FindByFirstName(tests.DefaultFullName))
}

func (s *NameStoreTestSuite) TestFindByNameWithoutMatchReturnsEmptySlice() {
	result := s.store.FindByFirstName(tests.DefaultFirstName)
	s.NotNil(result)
	s.Empty(result)
}

func (s *NameStoreTestSuite) TestFindByNameSkipsNamesWithoutSeparator() {
	s.store.SetNames([]string{tests.MalformedName, tests.DefaultFullName})

	s.NotPanics(func() {
		s.Equal([]string{tests.DefaultFullName}, s.store.FindByFirstName(tests.DefaultFirstName))
		s.Empty(s.store.FindByFirstName(tests.MalformedName))
		s.Empty(s.store.FindByLastName(tests.MalformedName))
	})
}

func (s *NameStoreTestSuite) TestFindByLastNameUsesEverythingAfterFirstSpace() {
	s.store.Add("Mary Ann Smith")
	s.Equal([]string{"Mary Ann Smith"}, s.store.FindByLastName("Ann Smith"))
	s.Empty(s.store.FindByLastName("Smith"))
	s.Equal([]string{"Mary Ann Smith"}, s.store.FindByFirstName("Mary"))
}

func (s *NameStoreTestSuite) TestUpdateReplacesName() {
	s.store.Add(tests.DefaultFullName)
	s.True(s.store.Update(tests.DefaultFullName, tests.UpdatedFullName))

	name, ok := s.store.Find(tests.UpdatedFullName)
	s.True(ok)
	s.Equal(tests.UpdatedFullName, name)
	_, ok = s.store.Find(tests.DefaultFullName)
	s.False(ok)
}

func (s *NameStoreTestSuite) TestUpdatePreservesPosition() {
	s.store.SetNames([]string{"A One", tests.DefaultFullName, "B Two"})
	s.True(s.store.Update(tests.DefaultFullName, tests.UpdatedFullName))
	s.Equal([]string{"A One", tests.UpdatedFullName, "B Two"}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestUpdateOfAbsentNameFails() {
	s.store.Add(tests.DefaultFullName)
	s.False(s.store.Update(tests.NonExistingName, "X Y"))
	s.Equal([]string{tests.DefaultFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestUpdateToExistingNameFails() {
	s.store.SetNames([]string{tests.DefaultFullName, tests.AnotherFullName})

	s.Run("exact spelling", func() {
		s.False(s.store.Update(tests.DefaultFullName, tests.AnotherFullName))
	})
	s.Run("different case", func() {
		s.False(s.store.Update(tests.DefaultFullName, strings.ToUpper(tests.AnotherFullName)))
	})
	s.Equal([]string{tests.DefaultFullName, tests.AnotherFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestUpdateMayChangeCaseOfName() {
	s.store.Add("john doe")
	s.True(s.store.Update("john doe", tests.DefaultFullName))
	s.Equal([]string{tests.DefaultFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestUpdateRewritesEveryCaseVariant() {
	s.store.SetNames([]string{tests.DefaultFullName, "JOHN DOE", tests.AnotherFullName})
	s.True(s.store.Update("john doe", "Jane Roe"))
	s.Equal([]string{"Jane Roe", "Jane Roe", tests.AnotherFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestUpdateMatchesOriginalCaseInsensitively() {
	s.store.Add(tests.DefaultFullName)
	s.True(s.store.Update("JOHN DOE", tests.UpdatedFullName))
	s.Equal([]string{tests.UpdatedFullName}, s.store.FindAll())
}

func (s *NameStoreTestSuite) TestConcurrentAddsKeepNamesUnique() {
	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			results <- s.store.Add(tests.DefaultFullName)
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for added := range results {
		if added {
			successes++
		}
	}
	s.Equal(1, successes)
	s.Equal(1, s.store.Size())
}
