package validator_test

import (
	"rms/shared/validator"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type bookingInput struct {
	Date      string `json:"date"       validate:"required,isodate"`
	Time      string `json:"time"       validate:"omitempty,clock"`
	PartySize int    `json:"party_size" validate:"required,gt=0"`
	Email     string `json:"email"      validate:"omitempty,email"`
	Source    string `json:"source"     validate:"omitempty,oneof=phone walk_in online"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    bookingInput
		wantErr string
	}{
		{
			name: "valid input",
			data: bookingInput{Date: "2025-03-14", Time: "19:00", PartySize: 4, Source: "online"},
		},
		{
			name:    "missing date",
			data:    bookingInput{PartySize: 2},
			wantErr: "date is required",
		},
		{
			name:    "malformed date",
			data:    bookingInput{Date: "14-03-2025", PartySize: 2},
			wantErr: "date must be a date in YYYY-MM-DD format",
		},
		{
			name:    "malformed clock",
			data:    bookingInput{Date: "2025-03-14", Time: "7pm", PartySize: 2},
			wantErr: "time must be a time in HH:MM format",
		},
		{
			name:    "single digit hour is rejected",
			data:    bookingInput{Date: "2025-03-14", Time: "7:00", PartySize: 2},
			wantErr: "time must be a time in HH:MM format",
		},
		{
			name:    "zero party size",
			data:    bookingInput{Date: "2025-03-14", PartySize: 0},
			wantErr: "party_size is required",
		},
		{
			name:    "negative party size",
			data:    bookingInput{Date: "2025-03-14", PartySize: -2},
			wantErr: "party_size must be greater than 0",
		},
		{
			name:    "invalid email",
			data:    bookingInput{Date: "2025-03-14", PartySize: 2, Email: "nope"},
			wantErr: "email must be a valid email address",
		},
		{
			name:    "invalid source",
			data:    bookingInput{Date: "2025-03-14", PartySize: 2, Source: "fax"},
			wantErr: "source must be one of phone walk_in online",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateStruct_UnnamedField(t *testing.T) {
	type input struct {
		Name string `validate:"required,max=3"`
	}

	assert.EqualError(t, validator.ValidateStruct(&input{Name: "toolong"}), "Name must be at most 3 characters")
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name    string
		field   any
		tag     string
		wantErr bool
	}{
		{name: "valid clock", field: "23:45", tag: "clock"},
		{name: "out of range clock", field: "24:10", tag: "clock", wantErr: true},
		{name: "valid date", field: "2024-02-29", tag: "isodate"},
		{name: "impossible date", field: "2023-02-29", tag: "isodate", wantErr: true},
		{name: "unpadded clock", field: "9:30", tag: "clock", wantErr: true},
		{name: "number in range", field: 25, tag: "gte=0,lte=100"},
		{name: "number out of range", field: 150, tag: "gte=0,lte=100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		wantErr  bool
	}{
		{name: "valid body", jsonBody: `{"date":"2025-03-14","time":"19:00","party_size":2}`},
		{name: "invalid field", jsonBody: `{"date":"2025-03-14","party_size":0}`, wantErr: true},
		{name: "malformed body", jsonBody: `{"date":}`, wantErr: true},
		{name: "empty body", jsonBody: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data bookingInput

			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
