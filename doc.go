// Package paramshape validates, coerces and reshapes loosely typed parameter
// trees (decoded JSON, YAML or query strings) against declarative shapes.
//
// The root package holds the shared vocabulary:
//
// - Issues, the error model (code, JSON Pointer path, detail, meta)
// - Path and ParsePointer for addressing values inside a tree
// - Result, the outcome of a validation call
//
// Design policy:
// - Shapes, named types and scopes live in schema/; each pass is its own
//   package (validate/, coerce/, transform/, deserialize/).
// - pipeline/ chains the passes; middleware/ applies them to HTTP requests.
// - schemafile/ loads shapes from YAML, TOML or JSON; cmd/paramshape is the CLI.
//
// Typical usage:
//
//	reg := b.MustBuild()
//	res := validate.New(reg).Validate(shape, input)
//	if !res.OK() {
//		return res.Err()
//	}
//	params := transform.New(reg).Transform(shape, res.Params)
package paramshape
