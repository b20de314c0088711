package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/pulseph/internal/auth"
	"github.com/nhle/pulseph/internal/geo"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/ui/onboarding"
)

var errNoCoordinate = errors.New("no coordinate: pass --lat and --lon, or set location.latitude and location.longitude in the config")

func newNearestCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Find the municipality closest to a coordinate.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c model.Coordinate
			switch {
			case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"):
				c = model.Coordinate{Latitude: lat, Longitude: lon}
			case cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon"):
				return errors.New("--lat and --lon must be given together")
			default:
				cfg, err := loadConfig(deps, flags)
				if err != nil {
					return err
				}
				var ok bool
				if c, ok = cfg.DefaultLocation(); !ok {
					return errNoCoordinate
				}
			}

			m, err := geo.Detect(c)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%.1f km)\n", geo.FormatDisplay(m.Location), m.DistanceKm)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in degrees.")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude in degrees.")
	return cmd
}

func newLGUsCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	var province string

	cmd := &cobra.Command{
		Use:   "lgus",
		Short: "List the LGUs you can subscribe to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if province != "" {
				locs := geo.ByProvince(province)
				if len(locs) == 0 {
					return fmt.Errorf("no municipalities found in %q", province)
				}
				for _, l := range locs {
					_, _ = fmt.Fprintln(out, l.Name)
				}
				return nil
			}

			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			for _, name := range rt.API.LocationNames(cmd.Context()) {
				_, _ = fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&province, "province", "", "List catalogue municipalities in one province instead of asking the backend.")
	return cmd
}

func newSubscribeCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribe <lgu>...",
		Short: "Replace your LGU subscriptions.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			ctx := cmd.Context()
			a, err := rt.Session.CurrentAuth(ctx)
			if err != nil {
				return err
			}
			if a == nil {
				return errNotSignedIn
			}

			var selected []string
			for _, arg := range args {
				if name := strings.TrimSpace(arg); name != "" {
					selected = append(selected, name)
				}
			}
			if len(selected) == 0 {
				return auth.ErrNoLocations
			}

			profile, err := onboarding.SaveProfile(ctx, rt.API, rt.Session, a.PhoneNumber, selected)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Subscribed to %s.\n", strings.Join(profile.Locations, ", "))
			return nil
		},
	}
	return cmd
}
