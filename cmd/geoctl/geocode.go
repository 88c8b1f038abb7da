package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jobboard/geo-service/internal/geo"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <text>",
	Short: "Resolve location text against the city table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := geo.NewGeocoder().Geocode(strings.Join(args, " "))
		fmt.Println(titleStyle.Render(res.Label))
		fmt.Printf("%s %s\n", labelStyle.Render("Coordinates:"), res.Coordinate)
		if !res.Matched {
			fmt.Println(mutedStyle.Render("No table entry matched; using the default coordinate."))
		}
		return nil
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance <lat1> <lng1> <lat2> <lng2>",
	Short: "Great-circle distance between two points in km",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		vals := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("argument %d: %q is not a number", i+1, a)
			}
			vals[i] = v
		}
		a := geo.Coordinate{Latitude: vals[0], Longitude: vals[1]}
		b := geo.Coordinate{Latitude: vals[2], Longitude: vals[3]}
		if !a.Valid() || !b.Valid() {
			return fmt.Errorf("coordinates out of range: %s, %s", a, b)
		}
		fmt.Printf("%s %.1f km\n", labelStyle.Render("Distance:"), geo.RoundKm(geo.DistanceKm(a, b)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd, distanceCmd)
}
