package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/edusync/edusync-portal/internal/quiz"
)

// questionFile is the object form of an import file.
type questionFile struct {
	Title     string          `json:"title"`
	Questions json.RawMessage `json:"questions"`
}

// prepared is an assessment ready to send.
type prepared struct {
	Title     string
	Questions string
	MaxScore  int
	Count     int
}

// prepare parses an import file, runs it through the builder and the
// pre-submit validation, and encodes it for the API.
func prepare(data []byte, title string) (*prepared, error) {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if !bytes.HasPrefix(data, []byte("[")) {
		var f questionFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse question file: %w", err)
		}
		if len(f.Questions) == 0 {
			return nil, errors.New("question file has no questions field")
		}
		raw = string(f.Questions)
		if title == "" {
			title = f.Title
		}
	}

	questions, err := quiz.Decode(raw)
	if err != nil {
		return nil, err
	}
	set := quiz.LoadQuestionSet(quiz.UUIDGenerator{}, questions)

	title = strings.TrimSpace(title)
	if err := quiz.Validate(title, set.Questions()); err != nil {
		return nil, err
	}
	encoded, err := quiz.Encode(set.Questions())
	if err != nil {
		return nil, err
	}
	return &prepared{
		Title:     title,
		Questions: encoded,
		MaxScore:  set.MaxScore(),
		Count:     set.Len(),
	}, nil
}
