package lib

import (
	"context"
	"log"
	"pbs/src/config"

	"googlemaps.github.io/maps"
)

var mapsClient *maps.Client

func GetMapsClient() (*maps.Client, error) {
	if mapsClient != nil {
		return mapsClient, nil
	}
	cli, err := maps.NewClient(maps.WithAPIKey(config.GAPI_API_KEY))
	if err != nil {
		return nil, err
	}
	mapsClient = cli
	return cli, nil
}

// GeocodeLocation resolves a free-form session location. Best effort: a
// booking is never rejected because geocoding was down.
func GeocodeLocation(ctx context.Context, address string) (*maps.GeocodingResult, error) {
	cli, err := GetMapsClient()
	if err != nil {
		return nil, err
	}
	results, err := cli.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		log.Printf("[maps] Error geocoding %q: %s\n", address, err.Error())
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}
