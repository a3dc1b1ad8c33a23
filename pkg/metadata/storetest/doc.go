// Package storetest provides a conformance test suite for metadata store
// implementations.
//
// All store backends (memory, badger, postgres) should pass these tests.
// The suite verifies that every implementation satisfies the Store
// behavioral contract, catching regressions when backend code changes.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
//	        return memory.NewStore()
//	    })
//	}
//
// The factory function receives *testing.T so it can call t.TempDir() for
// stores that need filesystem paths (e.g., BadgerDB) and t.Cleanup for
// teardown.
package storetest
