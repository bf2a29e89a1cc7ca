package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

// profileFlag binds one profile field to a CLI flag.
type profileFlag struct {
	flag  string
	field string
	usage string
}

var profileFlags = []profileFlag{
	{"age", constants.FieldAge, "customer age in years, 18-100 (e.g. 28)"},
	{"annual-income", constants.FieldAnnualIncome, "annual income, 100000-2500000 (e.g. 800000)"},
	{"family-members", constants.FieldFamilyMembers, "family members, 1-10 (e.g. 4)"},
	{"employment-sector", constants.FieldEmploymentSector, "GOVERNMENT or PRIVATE_OR_SELF_EMPLOYED"},
	{"higher-education", constants.FieldHigherEducation, "Yes or No"},
	{"chronic-conditions", constants.FieldChronicConditions, "Yes or No"},
	{"frequent-flyer", constants.FieldFrequentFlyer, "Yes or No"},
	{"travelled-abroad", constants.FieldTravelledAbroad, "Yes or No"},
}

func newScoreCommand(opts *globalOptions) *cobra.Command {
	var file string
	values := make(map[string]*string, len(profileFlags))

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one customer profile",
		Long: `Score one customer profile and print its probability and lead tier.

The profile is read from --file (a JSON object) and/or the field flags; flags
override file values. Every field is required: nothing is defaulted.`,
		Example: `  tips-cli score --age 28 --annual-income 800000 --family-members 4 \
    --employment-sector PRIVATE_OR_SELF_EMPLOYED --higher-education Yes \
    --chronic-conditions No --frequent-flyer No --travelled-abroad No`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]any{}
			if file != "" {
				fromFile, err := readProfileFile(file)
				if err != nil {
					return err
				}
				raw = fromFile
			}
			for _, pf := range profileFlags {
				if cmd.Flags().Changed(pf.flag) {
					raw[pf.field] = *values[pf.flag]
				}
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			resp, err := s.scoring.ScoreProfile(cmd.Context(), raw)
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the profile from a JSON file ('-' for stdin)")
	for _, pf := range profileFlags {
		values[pf.flag] = cmd.Flags().String(pf.flag, "", pf.usage)
	}
	return cmd
}

func readProfileFile(path string) (map[string]any, error) {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open profile: %w", err)
		}
		defer f.Close()
		in = f
	}

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, fmt.Errorf("profile file must contain a JSON object")
	}
	return raw, nil
}

// describe turns a scoring failure into a one-line CLI error.
func describe(err error) error {
	coreErr, ok := errors.AsCoreError(err)
	if !ok {
		return err
	}
	if violations, ok := coreErr.Metadata()["violations"].(map[string]string); ok && len(violations) > 1 {
		return fmt.Errorf("%s: %s (%d fields invalid)", coreErr.Code(), coreErr.Error(), len(violations))
	}
	return fmt.Errorf("%s: %s", coreErr.Code(), coreErr.Error())
}
