package logging

const (
	FieldComponent = "component"
	FieldDuration  = "duration"

	FieldPath      = "path"
	FieldOutDir    = "outDir"
	FieldFormat    = "format"
	FieldEvent     = "event"
	FieldFacet     = "facet"
	FieldFacets    = "facets"
	FieldSignature = "signature"
	FieldReasons   = "reasons"
	FieldEntries   = "entries"
	FieldConflicts = "conflicts"
	FieldWarnings  = "warnings"
	FieldContract  = "contract"
)
