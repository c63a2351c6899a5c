package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/internal/logging"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion"
)

func newDetectCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Print the detected protocol of one export as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			closer, err := logging.Init(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer closer.Close()

			pipeline, err := nanion.NewPipeline(cfg.Options())
			if err != nil {
				return err
			}
			v, err := pipeline.WithLogger(logging.New("detect")).Validate(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", nanion.Classify(err), err)
			}

			var data []byte
			if pretty {
				data, err = json.MarshalIndent(v.Protocol, "", "  ")
			} else {
				data, err = json.Marshal(v.Protocol)
			}
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}
