package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neboloop/callbridge/internal/db"
)

// ComplaintCmd exposes the complaint store to operators.
func ComplaintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complaint",
		Short: "Raise, look up and update complaints",
		Long: `Operate on the same complaint store the voice agent uses.

Examples:
  callbridge complaint raise --name "Ravi" --problem "no power since morning"
  callbridge complaint lookup 42
  callbridge complaint lookup 5a1e0c3d
  callbridge complaint update 5a1e0c3d-... --status "fault rectified"`,
	}
	cmd.AddCommand(complaintRaiseCmd(), complaintLookupCmd(), complaintUpdateCmd())
	return cmd
}

func complaintRaiseCmd() *cobra.Command {
	var in db.NewComplaint
	cmd := &cobra.Command{
		Use:   "raise",
		Short: "Register a new complaint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := store.RaiseComplaint(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "caller name (required)")
	cmd.Flags().StringVar(&in.ProblemDetails, "problem", "", "problem description (required)")
	cmd.Flags().StringVar(&in.ServiceNo, "service-no", "", "service connection number")
	cmd.Flags().StringVar(&in.AreaDescription, "area", "", "area description")
	cmd.Flags().StringVar(&in.Landmark, "landmark", "", "nearby landmark")
	return cmd
}

func complaintLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <number|id|id-prefix>",
		Short: "Show one complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			c, err := store.LookupComplaint(cmd.Context(), db.QueryRef(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd, c)
		},
	}
}

func complaintUpdateCmd() *cobra.Command {
	var u db.StatusUpdate
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a complaint's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u.ComplaintID = args[0]
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := store.UpdateComplaintStatus(cmd.Context(), u)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&u.Status, "status", "", fmt.Sprintf("new status, e.g. %q (required)", db.StatusFaultRectified))
	cmd.Flags().StringVar(&u.EstimationTime, "eta", "", "estimated resolution time")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
