package pipeline

import (
	"context"
	"io"
	"os"
)

// TableSource opens one delimited-text table with a header row.
type TableSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads a table from a local path.
type FileSource string

func (f FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(string(f))
}

func (f FileSource) String() string { return string(f) }

// Sources groups the three input tables.
type Sources struct {
	Temperature   TableSource
	Precipitation TableSource
	Coordinates   TableSource
}

// FileSources is a convenience for the common case of three local files.
func FileSources(temperature, precipitation, coordinates string) Sources {
	return Sources{
		Temperature:   FileSource(temperature),
		Precipitation: FileSource(precipitation),
		Coordinates:   FileSource(coordinates),
	}
}
