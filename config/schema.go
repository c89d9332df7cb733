package config

// schemaCUE constrains the decoded TOML config before it's trusted:
// booleans stay booleans, and ignored_exceptions is a list of
// non-empty, fully-qualified-looking type names. Decoding errors from
// go-toml/v2 catch structural mistakes; this schema catches the
// semantically-invalid-but-structurally-fine ones (e.g. an empty
// string slipped into ignored_exceptions).
const schemaCUE = `
#Config: {
	permit_static_owning?:         bool
	no_lightweight_ownership?:     bool
	strict_field_match?:           bool
	permit_unchecked_exceptions?:  bool
	ignored_exceptions?: [...string & =~"^[A-Za-z_][A-Za-z0-9_.*]*$"]
}
`
