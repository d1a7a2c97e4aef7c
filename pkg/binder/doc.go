// Package binder parses HTTP requests into typed struct values.
//
// Each binder handles one request aspect (JSON body, form body, query
// string, path parameters) driven by the corresponding struct tag. Binders
// that do not apply to a request report ErrBinderNotApplicable, which lets
// several binders be chained on one endpoint and only the matching ones run.
package binder
