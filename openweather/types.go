package openweather

// currentJSON is the subset of /weather the service reads
type currentJSON struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main    mainJSON        `json:"main"`
	Weather []conditionJSON `json:"weather"`
	Wind    windJSON        `json:"wind"`
}

// forecastJSON is the subset of /forecast the service reads
type forecastJSON struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt      int64           `json:"dt"`
		Main    mainJSON        `json:"main"`
		Weather []conditionJSON `json:"weather"`
		Wind    windJSON        `json:"wind"`
		Pop     float64         `json:"pop"` // probability of precipitation, 0..1
	} `json:"list"`
}

type mainJSON struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
}

type conditionJSON struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type windJSON struct {
	Speed float64 `json:"speed"`
}

// errorJSON is the body OpenWeatherMap sends with non-2xx responses
type errorJSON struct {
	Cod     any    `json:"cod"` // string or number depending on endpoint
	Message string `json:"message"`
}

func describe(w []conditionJSON) string {
	if len(w) == 0 {
		return ""
	}
	return w[0].Description
}
