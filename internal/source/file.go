package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"conversion-insights-go/internal/types"
)

// File reads two JSON array exports, one document per element.
type File struct {
	AssessmentsPath  string
	AppointmentsPath string
}

func NewFile(assessments, appointments string) *File {
	return &File{AssessmentsPath: assessments, AppointmentsPath: appointments}
}

func (f *File) Assessments(_ context.Context) ([]any, error) {
	docs, err := readArray(f.AssessmentsPath)
	if err != nil {
		return nil, unavailable("assessments", err)
	}
	return docs, nil
}

func (f *File) Appointments(_ context.Context) ([]types.Appointment, error) {
	docs, err := readArray(f.AppointmentsPath)
	if err != nil {
		return nil, unavailable("appointments", err)
	}
	return Appointments(docs), nil
}

func readArray(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []any
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}
