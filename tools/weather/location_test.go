package weather

import "testing"

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"What's the weather in Tokyo?", "Tokyo"},
		{"weather in london", "London"},
		{"How is the weather in New York today?", "New York"},
		{"forecast for san francisco this weekend", "San Francisco"},
		{"Is it raining in Paris right now?", "Paris"},
		{"temperature at the moment in Berlin", "Berlin"},
		{"weather in Paris for the weekend", "Paris"},
		{"what is the humidity in são paulo", "São Paulo"},
		{"weather in the Hague", "Hague"},
		{"Weather in Jakarta, Indonesia", "Jakarta"},
		{"temperature in Paris in celsius", "Paris"},
		{"weather in the US", "US"},
		{"forecast for NYC tomorrow", "NYC"},
		{"weather in beijing", "Beijing"},
		{"is it good weather for hiking in Bali?", "Bali"},
		{"weather for me in Oslo", "Oslo"},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got, ok := ExtractLocation(tc.query)
			if !ok {
				t.Fatalf("expected a location in %q", tc.query)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractLocation_None(t *testing.T) {
	tests := []string{
		"What's the weather?",
		"weather today",
		"what is the weather for today",
		"temperature at the moment",
		"forecast for the weekend",
		"weather in 2024",
		"What's the weather like for me?",
		"Is it good weather for running?",
		"How is the weather at my place?",
		"What's the temperature in here?",
		"weather over there",
		"temperature in celsius",
		"temperature in degrees fahrenheit",
		"is it warm enough for us",
		"",
	}

	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			if got, ok := ExtractLocation(q); ok {
				t.Errorf("expected no location, got %q", got)
			}
		})
	}
}
