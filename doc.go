// Package nasc is a dependency resolution engine for Go.
//
// Nasc (Old Irish: "Link" or "Bond") builds fully wired object graphs on
// demand from a registry of abstract-type-to-implementation bindings. At every
// node it decides whether to reuse a cached instance (singleton) or build a
// fresh one (transient), resolving constructor parameters recursively.
//
// # Registering
//
// Bindings live in a registry.Registry, which the engine only reads:
//
//	reg := registry.New()
//	nasc.Singleton[Logger](reg, NewConsoleLogger)
//	nasc.NamedSingleton[Database](reg, "replica", NewReplicaDB)
//	nasc.Transient[UserService](reg, NewUserService)
//
// An implementation may have several constructors. Constructors are plain
// functions returning the implementation (optionally with an error), or a
// pointer-to-struct sample whose exported fields tagged `inject` are filled:
//
//	type ReportService struct {
//	    DB     Database `inject:"name=replica"`
//	    Cache  Cache    `inject:"optional"`
//	    Logger Logger   `inject:""`
//	}
//	nasc.Transient[Reports](reg, &ReportService{})
//
// Function parameters are qualified positionally with registry.Ctor:
//
//	nasc.Transient[Reports](reg, registry.Ctor(NewReportService, "name=replica"))
//
// # Resolving
//
//	container := nasc.New(reg)
//	logger, ok := nasc.Resolve[Logger](container)
//	replica, ok := nasc.ResolveNamed[Database](container, "replica")
//	plugins, ok := nasc.Resolve[[]Plugin](container)
//
// Resolution never returns an error. Missing bindings, failing constructors
// and dependency cycles all yield ok == false. Use WithLogger or WithDebug to
// see why.
//
// Resolution order for a request is: named bindings (singleton table, then
// transient table), the first unnamed singleton, the first unnamed
// transient, a collection of every candidate when a slice []T is requested,
// and finally open generic bindings, where Repository[User] is served by the
// instantiation of a registry.Generic family with the same type arguments.
// Singleton registration takes precedence over transient registration of the
// same type.
//
// # Constructors
//
// Constructors are tried in ascending order of parameters that no
// registration can satisfy. A constructor that returns an error, panics,
// returns nil or lacks a required dependency is skipped in favor of the
// next one. Primitive and struct-valued parameters receive their zero value.
//
// # Thread Safety
//
// Resolution is safe for concurrent use. One mutex per engine serializes
// the first construction of every singleton, so each singleton slot is built
// exactly once. Transients are built without locking.
//
// A constructor may call back into its engine (Resolve, ResolveNamed or
// AutoWire) on its own goroutine: the call joins the resolution in progress,
// so a constructor asking for the type it is building gets false instead of
// blocking. A constructor must not wait on another goroutine that resolves a
// singleton from the same engine.
package nasc
