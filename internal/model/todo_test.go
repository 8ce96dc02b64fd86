package model

import (
	"errors"
	"strings"
	"testing"
)

func validInput() CreateTodoInput {
	return CreateTodoInput{
		Author:      "Jane Doe",
		Email:       "jane@example.com",
		Description: "water the plants",
	}
}

func TestCreateTodoInputValidate(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*CreateTodoInput)
		wantField string
	}{
		{"valid", func(in *CreateTodoInput) {}, ""},
		{"author too short", func(in *CreateTodoInput) { in.Author = "J" }, "author"},
		{"author at max", func(in *CreateTodoInput) { in.Author = strings.Repeat("a", AuthorMaxLen) }, ""},
		{"author too long", func(in *CreateTodoInput) { in.Author = strings.Repeat("a", AuthorMaxLen+1) }, "author"},
		{"email missing at", func(in *CreateTodoInput) { in.Email = "jane.example.com" }, "email"},
		{"email missing domain dot", func(in *CreateTodoInput) { in.Email = "jane@example" }, "email"},
		{"email with spaces", func(in *CreateTodoInput) { in.Email = "jane doe@example.com" }, "email"},
		{"description too short", func(in *CreateTodoInput) { in.Description = "x" }, "description"},
		{"description at max", func(in *CreateTodoInput) { in.Description = strings.Repeat("d", DescriptionMaxLen) }, ""},
		{"description too long", func(in *CreateTodoInput) { in.Description = strings.Repeat("d", DescriptionMaxLen+1) }, "description"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			err := in.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want validation error on %s", err, tc.wantField)
			}
			if vErr.Field != tc.wantField {
				t.Errorf("field = %q, want %q", vErr.Field, tc.wantField)
			}
		})
	}
}

func TestValidateCountsRunes(t *testing.T) {
	in := validInput()
	in.Author = "Åke" // 3 runes, more bytes
	if err := in.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTodoPatchValidate(t *testing.T) {
	short := "x"
	ok := "repot the ferns"

	if err := (TodoPatch{Description: &short}).Validate(); !IsValidationError(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	if err := (TodoPatch{Description: &ok}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// A patch with no description carries nothing to validate.
	completed := true
	if err := (TodoPatch{Completed: &completed}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
