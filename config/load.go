package config

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Load decodes a TOML configuration file's contents, validating the
// decoded shape against schemaCUE before returning it - the same
// compile-schema / compile-data / unify / validate / decode flow the
// pack's CUE-based config loaders use, rendered here for TOML input by
// decoding first and then unifying the decoded value back into CUE for
// the semantic checks go-toml/v2 can't express on its own.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if schema.Err() != nil {
		return nil, errors.Wrap(schema.Err(), "internal error: compiling config schema")
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if def.Err() != nil {
		return nil, errors.Wrap(def.Err(), "internal error: #Config definition not found")
	}

	encoded := ctx.Encode(cfg)
	if encoded.Err() != nil {
		return nil, errors.Wrap(encoded.Err(), "encoding config for validation")
	}
	unified := def.Unify(encoded)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, errors.Wrap(err, "config failed schema validation")
	}

	return &cfg, nil
}
