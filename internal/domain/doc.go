// Package domain models daily observations from a national network of
// weather stations after temperature, precipitation and coordinate
// snapshots have been joined.
//
// # Data Source
//
// Three delimited-text snapshots with a header row. Column names are the
// on-disk contract and are kept exactly as published:
//
//	temperature:   Ano, Mes, Dia, CodigoNacional, NombreEstacion, T.Maxima
//	precipitation: Ano, Mes, Dia, CodigoNacional, NombreEstacion, SumaDiaria
//	coordinates:   CodigoNacional, Latitud, Longitud, Altura
//
// # Conventions
//
// Dates:
//
//	Ano/Mes/Dia are composed into a UTC calendar date. Components may be
//	written as integers ("2021") or integral floats ("2021.0"). A missing or
//	out-of-range component (Mes=13, Dia=31 in April) is a DateCompositionError.
//
// Station identity:
//
//	CodigoNacional is opaque. Integral float spellings ("330020.0") are
//	canonicalised to "330020" so sources exported by different tools agree.
//	NombreEstacion is the user-facing key used for selections.
//
// Missing measurements:
//
//	Blank, "NA" and "NaN" cells load as NaN. Aggregations skip NaN values.
//
// Precipitation state:
//
//	A day is Wet when SumaDiaria > 0.1 mm (strict). Trace amounts of 0.1 mm
//	or less, and missing values, are Dry.
package domain
