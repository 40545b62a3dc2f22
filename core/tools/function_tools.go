package tools

import (
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

// --- Arg types ---

type CityArgs struct {
	City string `json:"city" jsonschema:"City name, in English or a supported localized form such as 北京"`
}

type IntroArgs struct{}

// NewWeatherTools creates the weather/time assistant tools.
func NewWeatherTools(w *WeatherClient) ([]tool.Tool, error) {
	var out []tool.Tool

	t, err := functiontool.New(
		functiontool.Config{Name: "get_weather", Description: "Get the current weather report for a city"},
		func(ctx tool.Context, args CityArgs) (Result, error) {
			return w.Weather(ctx, args.City), nil
		},
	)
	if err != nil {
		return nil, err
	}
	out = append(out, t)

	t, err = functiontool.New(
		functiontool.Config{Name: "get_current_time", Description: "Get the current local time and time zone of a city"},
		func(ctx tool.Context, args CityArgs) (Result, error) {
			return w.CurrentTime(ctx, args.City), nil
		},
	)
	if err != nil {
		return nil, err
	}
	out = append(out, t)

	t, err = functiontool.New(
		functiontool.Config{Name: "intro", Description: "Describe what this assistant can do"},
		func(ctx tool.Context, args IntroArgs) (Result, error) {
			return Intro(), nil
		},
	)
	if err != nil {
		return nil, err
	}
	out = append(out, t)

	return out, nil
}
