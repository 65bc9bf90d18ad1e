// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// vkglslc is a driver around the Vulkan GLSL backend. It builds demo
// shader trees in code (there is no source-language frontend in this
// module) and prints the generated GLSL and binding table, optionally
// dumping the table in msgpack form for toolchain inspection.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/vkglsl"
	"github.com/gogpu/vkglsl/glsl"
	"github.com/gogpu/vkglsl/ir"
)

var (
	flagStage       string
	flagProfile     string
	flagBindingsOut string
	flagNoColor     bool
)

// profileConfig is the TOML shape of a dialect options file.
type profileConfig struct {
	TargetProfile             string `toml:"target_profile"`
	EntryPoint                string `toml:"entry_point"`
	AllowCombinedSamplers     *bool  `toml:"allow_combined_samplers"`
	GenerateLayoutLocations   *bool  `toml:"generate_layout_locations"`
	GroupFlattenedUBs         *bool  `toml:"group_flattened_ubs"`
	DefaultPrecisionIsReduced *bool  `toml:"default_precision_is_reduced"`
}

func loadOptions(path string) (vkglsl.Options, error) {
	opts := vkglsl.DefaultOptions()
	if path == "" {
		return opts, nil
	}
	var cfg profileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return opts, fmt.Errorf("load profile %s: %w", path, err)
	}
	switch strings.ToUpper(cfg.TargetProfile) {
	case "":
	case "ES2":
		opts.TargetProfile = glsl.ProfileES2
	case "ES3_1", "ES31":
		opts.TargetProfile = glsl.ProfileES31
	case "SM4":
		opts.TargetProfile = glsl.ProfileSM4
	case "SM5":
		opts.TargetProfile = glsl.ProfileSM5
	default:
		return opts, fmt.Errorf("unknown target_profile %q", cfg.TargetProfile)
	}
	if cfg.EntryPoint != "" {
		opts.EntryPoint = cfg.EntryPoint
	}
	if cfg.AllowCombinedSamplers != nil {
		opts.AllowCombinedSamplers = *cfg.AllowCombinedSamplers
	}
	if cfg.GenerateLayoutLocations != nil {
		opts.GenerateLayoutLocations = *cfg.GenerateLayoutLocations
	}
	if cfg.GroupFlattenedUBs != nil {
		opts.GroupFlattenedUBs = *cfg.GroupFlattenedUBs
	}
	if cfg.DefaultPrecisionIsReduced != nil {
		opts.DefaultPrecisionIsReduced = *cfg.DefaultPrecisionIsReduced
	}
	return opts, nil
}

func parseStage(name string) (ir.ShaderStage, error) {
	switch strings.ToLower(name) {
	case "vertex", "vs":
		return ir.StageVertex, nil
	case "pixel", "fragment", "ps":
		return ir.StagePixel, nil
	case "geometry", "gs":
		return ir.StageGeometry, nil
	case "hull", "hs":
		return ir.StageHull, nil
	case "domain", "ds":
		return ir.StageDomain, nil
	case "compute", "cs":
		return ir.StageCompute, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", name)
	}
}

func reportDiags(diags []ir.Diagnostic) {
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)
	for _, d := range diags {
		if d.Severity == ir.SeverityError {
			fail.Fprintln(os.Stderr, d.String())
		} else {
			warn.Fprintln(os.Stderr, d.String())
		}
	}
}

// bindingDump is the msgpack shape of the --bindings-out file.
type bindingDump struct {
	Stage            string         `msgpack:"stage"`
	Bindings         []bindingEntry `msgpack:"bindings"`
	InputAttachments []string       `msgpack:"input_attachments"`
}

type bindingEntry struct {
	Name         string `msgpack:"name"`
	VirtualIndex int32  `msgpack:"virtual_index"`
	FinalIndex   int32  `msgpack:"final_index"`
	Kind         string `msgpack:"kind"`
	SubType      string `msgpack:"sub_type"`
}

func dumpBindings(path string, stage ir.ShaderStage, table *glsl.BindingTable) error {
	dump := bindingDump{
		Stage:            stage.String(),
		InputAttachments: table.InputAttachments(),
	}
	for i, b := range table.Bindings() {
		dump.Bindings = append(dump.Bindings, bindingEntry{
			Name:         b.Name,
			VirtualIndex: b.VirtualIndex,
			FinalIndex:   int32(i), //nolint:gosec // G115: binding counts are tiny
			Kind:         b.Kind.String(),
			SubType:      string(b.SubType),
		})
	}
	data, err := msgpack.Marshal(&dump)
	if err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bindings: %w", err)
	}
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		color.NoColor = true
	}
	stage, err := parseStage(flagStage)
	if err != nil {
		return err
	}
	opts, err := loadOptions(flagProfile)
	if err != nil {
		return err
	}

	shader, state := demoShader(stage, opts.EntryPoint)
	res, err := vkglsl.Generate(shader, state, stage, opts)
	if err != nil {
		reportDiags(state.Diags.Diagnostics)
		return err
	}
	reportDiags(res.Diagnostics)

	fmt.Print(res.GLSL)
	if flagBindingsOut != "" {
		if err := dumpBindings(flagBindingsOut, stage, res.Bindings); err != nil {
			return err
		}
	}
	return nil
}

// demoShader builds a small textured shader tree for the requested
// stage: a position/uv vertex shader or a single-texture pixel shader.
func demoShader(stage ir.ShaderStage, entry string) (*ir.Shader, *ir.ParseState) {
	shader := &ir.Shader{}
	state := ir.NewParseState()

	vec2 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 2})
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})

	if stage == ir.StageVertex {
		pos := &ir.DeclVariable{Name: "position", Type: vec4, Semantic: "ATTRIBUTE0"}
		sig := &ir.FunctionSignature{
			Name:           entry,
			ReturnType:     vec4,
			ReturnSemantic: "SV_Position",
			Parameters:     []*ir.DeclVariable{pos},
			ParameterModes: []ir.VariableMode{ir.ModeIn},
			IsDefined:      true,
			Body: ir.Block{
				&ir.Return{Value: &ir.DerefVariable{Var: pos}},
			},
		}
		shader.Decls = append(shader.Decls, &ir.Function{Name: entry, Signatures: []*ir.FunctionSignature{sig}})
		return shader, state
	}

	texType := shader.EnsureType("", ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, Scalar: ir.ScalarFloat})
	tex := &ir.DeclVariable{Name: "SceneTexture", Type: texType, Mode: ir.ModeUniform}
	shader.Decls = append(shader.Decls, tex)

	uv := &ir.DeclVariable{Name: "uv", Type: vec2, Semantic: "TEXCOORD0"}
	sig := &ir.FunctionSignature{
		Name:           entry,
		ReturnType:     vec4,
		ReturnSemantic: "SV_Target0",
		Parameters:     []*ir.DeclVariable{uv},
		ParameterModes: []ir.VariableMode{ir.ModeIn},
		IsDefined:      true,
		Body: ir.Block{
			&ir.Return{Value: &ir.TextureOp{
				Kind:         ir.TexSample,
				Type:         vec4,
				Texture:      &ir.DerefVariable{Var: tex},
				SamplerState: "SceneSampler",
				Coord:        &ir.DerefVariable{Var: uv},
			}},
		},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: entry, Signatures: []*ir.FunctionSignature{sig}})
	return shader, state
}

func main() {
	root := &cobra.Command{
		Use:           "vkglslc",
		Short:         "Vulkan GLSL backend driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	demo := &cobra.Command{
		Use:   "demo",
		Short: "Generate GLSL for a built-in demo shader",
		RunE:  runDemo,
	}
	demo.Flags().StringVar(&flagStage, "stage", "pixel", "shader stage (vertex, pixel, geometry, hull, domain, compute)")
	demo.Flags().StringVar(&flagProfile, "profile", "", "TOML dialect options file")
	demo.Flags().StringVar(&flagBindingsOut, "bindings-out", "", "write the binding table as msgpack")
	demo.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored diagnostics")
	root.AddCommand(demo)

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
