package config

// FlavorPreset documents the feature set a given Flavor allows, surfaced
// by `plank init` and `plank check`'s error messages. Grounded on the
// teacher's StrictnessPreset idiom (templates.go): a small lookup table
// keyed by a named level, rather than a hand-rolled switch at each call
// site.
type FlavorPreset struct {
	Description string
	Features    []string
}

// GetFlavorPresets returns the feature set for each built-in flavor. These
// lists are the allow-lists themselves: build and check turn a preset's
// Features into an internal/flavor.Target via flavor.NewTarget.
func GetFlavorPresets() map[Flavor]FlavorPreset {
	return map[Flavor]FlavorPreset{
		FlavorMinimal: {
			Description: "primitives, arrays and plain functions only",
			Features:    []string{"fn", "array", "primitive:boolean", "primitive:number", "primitive:string", "primitive:void", "primitive:any"},
		},
		FlavorStandard: {
			Description: "minimal, plus classes and interfaces",
			Features: []string{
				"fn", "array", "class", "interface",
				"primitive:boolean", "primitive:number", "primitive:string",
				"primitive:void", "primitive:any", "primitive:object",
			},
		},
		FlavorFull: {
			Description: "standard, plus enums and the never primitive",
			Features: []string{
				"fn", "array", "class", "interface", "enum",
				"primitive:boolean", "primitive:number", "primitive:string",
				"primitive:void", "primitive:any", "primitive:object", "primitive:never",
			},
		},
	}
}

// GetConfigTemplate returns a documented plank.config.yaml template for the
// chosen flavor, written by `plank init`.
func GetConfigTemplate(flavor Flavor) string {
	preset := GetFlavorPresets()[flavor]

	return `# plank configuration
# Documentation: https://github.com/plank-ts/plank

# Target flavor: the feature subset the host language can consume.
# ` + string(flavor) + ` — ` + preset.Description + `
flavor: ` + string(flavor) + `

# Emit a diagnostic (instead of silently falling back to Any) when
# typification hits a generic, union, intersection, tuple, or other
# unsupported type-expression form.
strict: false

# Controls which files are collected when -i names a directory instead of
# a single root declaration file.
analysis:
  include:
    - "**/*.d.ts"
  exclude:
    - "**/node_modules/**"
  recursive: true

# Controls plank build's emission.
output:
  directory: "."
  emit: ["json", "js"]
  colorize: true
`
}

// GetMinimalConfigTemplate returns a template with no comments, for
// non-interactive scaffolding.
func GetMinimalConfigTemplate(flavor Flavor) string {
	return `flavor: ` + string(flavor) + `
strict: false
analysis:
  include: ["**/*.d.ts"]
  exclude: ["**/node_modules/**"]
  recursive: true
output:
  directory: "."
  emit: ["json", "js"]
  colorize: true
`
}
