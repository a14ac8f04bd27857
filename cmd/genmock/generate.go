package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// station is one synthetic site with its climate parameters.
type station struct {
	id        string
	name      string
	lat, lon  float64
	elevation float64
	meanTmax  float64 // annual mean of the daily maximum, °C
	amplitude float64 // seasonal half-range, °C
	wetDays   float64 // probability that a day has rain
}

var stations = []station{
	{id: "180005", name: "Chacalluta, Arica Ap.", lat: -18.355, lon: -70.338, elevation: 58, meanTmax: 24, amplitude: 3, wetDays: 0.01},
	{id: "270008", name: "Desierto de Atacama, Caldera Ad.", lat: -27.261, lon: -70.779, elevation: 204, meanTmax: 22, amplitude: 3.5, wetDays: 0.02},
	{id: "330020", name: "Quinta Normal, Santiago", lat: -33.445, lon: -70.683, elevation: 527, meanTmax: 22.5, amplitude: 8, wetDays: 0.08},
	{id: "390006", name: "Pichoy, Valdivia Ad.", lat: -39.650, lon: -73.083, elevation: 18, meanTmax: 16.5, amplitude: 6, wetDays: 0.45},
	{id: "520006", name: "Carlos Ibañez, Punta Arenas Ap.", lat: -53.003, lon: -70.845, elevation: 37, meanTmax: 10.5, amplitude: 5, wetDays: 0.35},
}

type table struct {
	file string
	rows [][]string
}

type generator struct {
	from, to int
	seed     uint64
	missing  float64
}

// generate builds the three tables. Temperature follows a southern hemisphere
// cycle peaking mid-January with a small warming trend; rain amounts are
// exponential on wet days.
func (g generator) generate() ([]table, error) {
	if g.to < g.from {
		return nil, fmt.Errorf("invalid year range %d..%d", g.from, g.to)
	}
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	temps := [][]string{{"Ano", "Mes", "Dia", "CodigoNacional", "NombreEstacion", "T.Maxima"}}
	precs := [][]string{{"Ano", "Mes", "Dia", "CodigoNacional", "NombreEstacion", "SumaDiaria"}}
	coords := [][]string{{"CodigoNacional", "Latitud", "Longitud", "Altura", "NombreEstacion"}}

	for _, s := range stations {
		coords = append(coords, []string{s.id, ftoa(s.lat), ftoa(s.lon), ftoa(s.elevation), s.name})

		for day := time.Date(g.from, time.January, 1, 0, 0, 0, 0, time.UTC); day.Year() <= g.to; day = day.AddDate(0, 0, 1) {
			key := []string{strconv.Itoa(day.Year()), strconv.Itoa(int(day.Month())), strconv.Itoa(day.Day()), s.id, s.name}

			season := math.Cos(2 * math.Pi * float64(day.YearDay()-15) / 365.25)
			trend := 0.02 * float64(day.Year()-g.from)
			tmax := s.meanTmax + s.amplitude*season + trend + rng.NormFloat64()*2
			temps = append(temps, append(key, g.value(rng, math.Round(tmax*10)/10)))

			rain := 0.0
			if rng.Float64() < s.wetDays*(1-0.5*season) {
				rain = math.Round(rng.ExpFloat64()*80) / 10
			}
			precs = append(precs, append(slices.Clone(key), g.value(rng, rain)))
		}
	}

	return []table{
		{file: "MAESTRO_TEMPERATURAS_FINAL_COMPLETO.csv", rows: temps},
		{file: "MAESTRO_PRECIPITACIONES_FINAL_COMPLETO.csv", rows: precs},
		{file: "coordenadas.csv", rows: coords},
	}, nil
}

// value formats v, or blanks it with probability g.missing.
func (g generator) value(rng *rand.Rand, v float64) string {
	if rng.Float64() < g.missing {
		return ""
	}
	return ftoa(v)
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func writeTable(path string, rows [][]string) error {
	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df.Err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
