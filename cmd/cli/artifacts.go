package cli

import (
	"github.com/spf13/cobra"
)

func newArtifactsCommand(opts *globalOptions) *cobra.Command {
	artifactsCmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect model artifacts",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Load the transform and model once and print their metadata",
		Long: `Load the configured artifact pair, run the same integrity checks as the
server at startup, and print versions, checksums, feature names and methodology.
Exits non-zero when the artifacts cannot be served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			info, err := s.scoring.ArtifactInfo(cmd.Context())
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd, info)
		},
	}

	artifactsCmd.AddCommand(verifyCmd)
	return artifactsCmd
}
