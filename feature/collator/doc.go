// Package collator defines the collation provider protocol.
//
// A collation provider turns many raw dialog-event fragments, reported by the
// endpoints sharing one address-of-record, into one document per watched
// identity. The engine never looks inside that aggregation: it queues
// fragments, asks for builds and publishes whatever comes back.
//
// # Resolution
//
// Providers are registered by name in a Registry. Open resolves the configured
// name once at startup, calls the optional Init hook with the provider
// parameters (log-path, log-level, plugin-path, force-single-dialog,
// force-dummy-dialog and anything from the YAML params file) and creates the
// process handle. An unknown name, or a provider that yields no handle, is a
// fatal startup error.
//
// # Handles
//
// A Binding owns the one Handle of a process. Worker processes open their own
// Binding after they start; a handle is never copied across processes.
// Every Document returned by a build must be released exactly once by the
// caller that received it.
//
// # Usage
//
//	reg := collator.NewRegistry()
//	reg.Register(dialoginfo.Name, dialoginfo.New)
//
//	b, err := reg.Open(cfg.Collator, log)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	if doc, _ := b.Handle.BuildFromQueue("alice", "example.com"); doc != nil {
//	    defer b.Handle.Release(doc)
//	}
package collator
