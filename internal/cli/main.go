package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "toxcut <input>",
		Short:        "Cut clips around toxic speech in a recorded video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().Float64("threshold", 0.8, "Toxicity confidence threshold in [0,1]")
	root.Flags().Float64("padding", 5, "Seconds of padding around each toxic segment")
	root.Flags().String("on-error", "skip", "Classifier failure policy: skip or abort")
	root.Flags().StringSlice("labels", nil, "Classifier labels counted as toxic (substring match)")
	root.Flags().String("config", "", "Path to toxcut.yaml")

	// Hidden tuning flags (internal)
	root.Flags().Float64("gap", 1.5, "Silence gap in seconds that splits segments")
	root.Flags().Int("concurrency", 4, "Max in-flight classifier calls")
	root.Flags().Int("retries", 3, "Classifier retry attempts per segment")
	_ = root.Flags().MarkHidden("gap")
	_ = root.Flags().MarkHidden("concurrency")
	_ = root.Flags().MarkHidden("retries")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
