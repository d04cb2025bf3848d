package op

// builtins maps the built-in operator names to their constructors. The
// longlat family are aliases for noop, for easier retrofitting of
// pipelines written in PROJ syntax. The map is populated at run time:
// the pipeline constructor instantiates its steps through the factory,
// which reads the map back, so a static initializer would be cyclic.
var builtins map[string]Constructor

func init() {
	builtins = map[string]Constructor{
		"adapt":    newAdapt,
		"addone":   newAddone,
		"axisswap": newAxisswap,
		"cart":     newCart,
		"helmert":  newHelmert,
		"noop":     newNoop,
		"longlat":  newNoop,
		"latlon":   newNoop,
		"latlong":  newNoop,
		"lonlat":   newNoop,
		"pipeline": newPipelineConstructor,
		"push":     newPush,
		"pop":      newPop,
		"stack":    newStack,
	}
}

// newPipelineConstructor handles the explicit `pipeline` operator name.
// Pipelines are normally recognized by their step separators, so this only
// triggers for the degenerate single step case.
func newPipelineConstructor(raw *RawParameters, prv Provider) (*Op, error) {
	return newPipeline(raw, prv)
}

// BuiltinAdaptors returns the macros every provider registers up front,
// mapping conventional coordinate orders to the internal representation.
func BuiltinAdaptors() map[string]string {
	return map[string]string{
		"geo:in":  "adapt from=neuf_deg",
		"geo:out": "adapt to=neuf_deg",
		"gis:in":  "adapt from=enuf_deg",
		"gis:out": "adapt to=enuf_deg",
		"neu:in":  "adapt from=neuf",
		"neu:out": "adapt to=neuf",
		"enu:in":  "adapt from=enuf",
		"enu:out": "adapt to=enuf",
	}
}
