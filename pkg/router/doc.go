// Package router implements hierarchical, pattern-based request dispatch.
//
// A Router holds an ordered list of bindings, each pairing a Pattern with a
// child Router, plus a terminal Handler. Dispatch walks the bindings in
// registration order; the first pattern found anywhere in the path wins, the
// matched length is cut from the front of the path and the remainder is
// handed to the child. When nothing matches, the terminal Handler runs with
// the path untouched. The default terminal Handler answers 404.
//
// Routers compose into trees, or DAGs when one Router is bound from several
// parents, with no global registry:
//
//	api := router.New()
//	api.MustBind("^users/", users)
//
//	root := router.New()
//	root.MustBind("^api/", api)
//	root.MustBind("^static/", router.NewLeaf(files))
//
//	http.ListenAndServe(":8080", root)
//
// Leaves are Routers with no bindings and a custom terminal Handler; pure
// dispatchers are Routers with bindings and the default one.
//
// Bindings are not guarded by a lock. Register everything before the Router
// starts serving.
package router
