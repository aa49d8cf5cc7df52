// Package observable provides collections that report every structural change.
//
// Dictionary maps keys of any type to values. Keys are identified by
// reference for pointers, maps, slices and channels, and by type and value
// for everything else (see package identity), so keys need not be comparable.
// Func keys are identified by code pointer: all closures created from one
// function literal are the same key, so a second Add with such a closure
// overrides the first.
//
// List is an ordered sequence with index-based mutation.
//
// Both types raise one change event per mutation listing what was added and
// what was removed. Mutations that change nothing raise no event. Change
// handlers run synchronously after the mutation has been applied; a failing
// handler never affects the mutation or the other handlers.
//
//	d := observable.NewDictionary[*User, string]()
//	d.OnChanged(func(c observable.DictionaryChange[*User, string]) {
//	    fmt.Println(len(c.Added), "added,", len(c.Removed), "removed")
//	})
//	d.Add(alice, "admin")
package observable
