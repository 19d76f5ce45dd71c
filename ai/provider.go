package ai

// generatorOverride wraps a provider, replacing only its generator.
type generatorOverride struct {
	AIProvider
	generator Generator
}

// OverrideGenerator returns a provider identical to base except that
// Generator() yields the given generator. Used to route answer generation
// to a different backend than embedding and classification.
func OverrideGenerator(base AIProvider, generator Generator) AIProvider {
	return &generatorOverride{
		AIProvider: base,
		generator:  generator,
	}
}

// Generator returns the overriding generator.
func (p *generatorOverride) Generator() Generator {
	return p.generator
}
