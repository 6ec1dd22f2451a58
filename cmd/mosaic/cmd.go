package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mosaic-ml/mosaic/internal/array"
	"github.com/mosaic-ml/mosaic/internal/imageio"
	"github.com/mosaic-ml/mosaic/internal/modelspec"
	"github.com/mosaic-ml/mosaic/internal/pad"
	"github.com/mosaic-ml/mosaic/internal/predict"
)

// NewCLI builds the mosaic command tree.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mosaic",
		Short:         "Tiled prediction over large images and volumes",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}
	rootCmd.AddCommand(newPredictCmd())
	return rootCmd
}

func newPredictCmd() *cobra.Command {
	var (
		modelPath string
		inputs    []string
		outputs   []string
		backend   string
		tiling    bool
		padding   bool
		parallel  int
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "predict --model model.yaml --input in.png --output out.png",
		Short: "Run a model over one or more images, tiling or padding as needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 || len(inputs) != len(outputs) {
				return fmt.Errorf("need matching --input and --output paths, got %d and %d", len(inputs), len(outputs))
			}
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			return runPredict(predictOptions{
				modelPath: modelPath,
				inputs:    inputs,
				outputs:   outputs,
				backend:   backend,
				tiling:    tiling,
				padding:   padding,
				parallel:  parallel,
				logger:    logger,
			})
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model descriptor (YAML)")
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input file, repeatable")
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "output file, repeatable")
	cmd.Flags().StringVar(&backend, "backend", "identity", "prediction backend")
	cmd.Flags().BoolVar(&tiling, "tiling", false, "derive tiling from the model descriptor")
	cmd.Flags().BoolVar(&padding, "padding", false, "derive padding from the model descriptor")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "number of samples to predict concurrently")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report per-tile progress")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

type predictOptions struct {
	modelPath string
	inputs    []string
	outputs   []string
	backend   string
	tiling    bool
	padding   bool
	parallel  int
	logger    *slog.Logger
}

func runPredict(opts predictOptions) error {
	model, err := modelspec.Load(opts.modelPath)
	if err != nil {
		return err
	}
	if len(model.Inputs) != 1 || len(model.Outputs) != 1 {
		return fmt.Errorf("%w: %q declares %d inputs and %d outputs; only single-tensor models are supported",
			predict.ErrUnsupported, model.Name, len(model.Inputs), len(model.Outputs))
	}

	fn, err := lookupBackend(opts.backend)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(model, opts.tiling, opts.padding)
	if err != nil {
		return err
	}
	opts.logger.Debug("resolved config", "model", model.Name,
		"padding", describeSpec(cfg.Padding), "tiling", cfg.Tiling != nil)

	axes := model.Inputs[0].Axes.Axes
	outSpec := &model.Outputs[0]

	g := new(errgroup.Group)
	g.SetLimit(max(opts.parallel, 1))
	for i := range opts.inputs {
		in, out := opts.inputs[i], opts.outputs[i]
		g.Go(func() error {
			logger := opts.logger.With("input", in)

			data, err := imageio.ReadArray(in, axes)
			if err != nil {
				return err
			}
			logger.Debug("loaded input", "shape", fmt.Sprint(data.Shape()), "axes", axes.String())

			// For the tiled path the descriptor decides the output buffer;
			// a declared shape disagreeing with the input surfaces as a
			// shape mismatch instead of a silently misallocated result.
			runCfg := cfg
			if runCfg.Tiling != nil && (outSpec.Shape.Implicit() || outSpec.Shape.Fixed != nil) {
				outShape, err := outSpec.ResolveOutputShape(data.Shape())
				if err != nil {
					return err
				}
				buf, err := array.New[float32](outShape, outSpec.Axes.Axes)
				if err != nil {
					return fmt.Errorf("allocating output for %s: %w", in, err)
				}
				runCfg.Output = buf
			}

			results, err := predict.Run(fn, []*array.Array[float32]{data}, runCfg,
				predict.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("predicting %s: %w", in, err)
			}
			if len(results) != 1 {
				return fmt.Errorf("%w: backend returned %d outputs", predict.ErrUnsupported, len(results))
			}

			if err := imageio.WriteArray(out, results[0]); err != nil {
				return err
			}
			logger.Info("prediction written", "output", out)
			return nil
		})
	}
	return g.Wait()
}

// resolveConfig derives the engine configuration for automatic tiling
// or padding from the model descriptor. Requesting both is rejected by
// the engine itself.
func resolveConfig(model *modelspec.Descriptor, tiling, padding bool) (predict.Config[float32], error) {
	var cfg predict.Config[float32]
	if !tiling && !padding {
		return cfg, nil
	}

	input := &model.Inputs[0]
	output := &model.Outputs[0]
	shape, err := input.Shape.Spec()
	if err != nil {
		return cfg, err
	}

	if padding {
		spec, err := predict.ResolvePadding(shape, input.Axes.Axes)
		if err != nil {
			return cfg, err
		}
		cfg.Padding = &spec
	}
	if tiling {
		if output.Shape.Implicit() && !output.IdentitySpatial() {
			return cfg, fmt.Errorf("%w: tiling with a different output shape is not supported", predict.ErrUnsupported)
		}
		t, err := predict.ResolveTiling(shape, input.Axes.Axes, output.Halo)
		if err != nil {
			return cfg, err
		}
		cfg.Tiling = &t
	}
	return cfg, nil
}

// describeSpec is used by verbose logging to show a padding spec.
func describeSpec(s *pad.Spec) string {
	if s == nil {
		return "none"
	}
	parts := make([]string, 0, len(s.Targets))
	for ax, target := range s.Targets {
		parts = append(parts, fmt.Sprintf("%s=%d", ax, target))
	}
	return fmt.Sprintf("%s(%s)", s.Mode, strings.Join(parts, ","))
}
