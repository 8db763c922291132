// Package dependent provides attribute-level reactive dependency tracking
// for Go: settable base attributes, memoized derived attributes, and
// dependency-aware operations, kept consistent through lazy invalidation.
//
// # Overview
//
// The package organizes state around three core concepts:
//
//  1. Schema: the type-level dependency graph, built once by declaration
//  2. Instance: per-object slot storage, one slot per declared attribute
//  3. Attributes: Base (settable), Derived (memoized), Operation (callable)
//
// # Basic Usage
//
// Declare a schema and its attributes. Dependencies reference attributes
// declared earlier on the same schema:
//
//	person := dependent.NewSchema("person")
//
//	name := dependent.Must(dependent.DeclareBase[string](person, "name"))
//
//	honorific := dependent.Must(dependent.Derived1(person, "honorific", name,
//	    func(ctx *dependent.ComputeCtx, name *dependent.Reader[string]) (string, error) {
//	        n, _ := name.Get()
//	        return "Professor " + n, nil
//	    },
//	))
//
// Create instances and access attributes through the typed handles:
//
//	ada := person.NewInstance()
//	name.Set(ada, "Ada")
//
//	title, err := honorific.Get(ada) // "Professor Ada", computed once
//
// # Invalidation
//
// Writing a base attribute marks every transitively dependent derived
// slot stale, without recomputing anything. Computation is pull-based: a
// stale derived attribute recomputes on its next read, resolving its own
// stale upstream attributes bottom-up first. A base changed five times
// before the next read costs one recomputation, and derived attributes
// nobody reads cost nothing.
//
//	name.Set(ada, "Grace")        // honorific marked stale, no work done
//	title, _ = honorific.Get(ada) // "Professor Grace", recomputed now
//
// # Operations
//
// Operations declare upstream dependencies for graph validation but are
// never memoized, since their results may vary with call arguments the
// graph knows nothing about:
//
//	adjust := dependent.Must(dependent.Operation1(person, "adjust_honorific", honorific,
//	    func(ctx *dependent.ComputeCtx, h *dependent.Reader[string], args ...any) (string, error) {
//	        title, err := h.Get()
//	        if err != nil {
//	            return "", err
//	        }
//	        if len(args) > 0 && args[0] == "yell" {
//	            return strings.ToUpper(title), nil
//	        }
//	        return strings.ToLower(title), nil
//	    },
//	))
//
//	loud, _ := adjust.Call(ada, "yell")
//
// # Declaration Errors
//
// Schemas validate at declaration time. A dependency on an attribute not
// yet registered fails with UnknownDependencyError (forward references
// are unsupported: declaration order is the only ordering signal), and a
// dependency cycle, including a self-dependency through the name-based
// API, fails with CycleError. Both are fatal to defining the schema.
//
// A failing compute function surfaces as ComputeError at read time; the
// slot stays invalid, so the next read retries instead of caching the
// failure.
//
// # Dynamic Access
//
// Attributes can be resolved by name when the typed handles are out of
// reach, mirroring ordinary attribute syntax in a host binding:
//
//	val, err := ada.Get("honorific")
//	err = ada.Set("name", "Grace")
//	fn, err := ada.Get("adjust_honorific") // func(...any) (any, error)
//
// # Extensions
//
// Extensions provide cross-cutting concerns through lifecycle hooks. The
// core itself performs no logging; wire an extension instead:
//
//	inst := person.NewInstance(
//	    dependent.WithExtension(extensions.NewLoggingExtension(handler)),
//	)
//
// Extensions wrap set, compute and invoke operations in middleware
// fashion and observe errors, invalidations and cleanup failures.
//
// # Resource Cleanup
//
// Compute functions may register cleanups for resources their value holds
// on to. Cleanups run when the slot is invalidated and on Instance.Close:
//
//	conn := dependent.Must(dependent.Derived1(s, "conn", addr,
//	    func(ctx *dependent.ComputeCtx, addr *dependent.Reader[string]) (*Conn, error) {
//	        c, err := dial(addr)
//	        if err != nil {
//	            return nil, err
//	        }
//	        ctx.OnCleanup(c.Close)
//	        return c, nil
//	    },
//	))
//
// # Thread Safety
//
// Instances provide no internal synchronization: the invalidation sweep
// and recursive staleness resolution are not safe under concurrent
// mutation, so callers must serialize access to a shared instance
// externally. Schemas and their graphs are immutable once the first
// instance exists and are safe to share across goroutines.
package dependent
