package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"locationShare/internal/mapview"
)

const maxBodyBytes = 1 << 16

var validate = validator.New(validator.WithRequiredStructEnabled())

// credentials is the body of /api/init, /api/login and /api/users.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeCredentials reads the request body. A malformed or oversized body
// yields empty credentials, which the account service reports as missing
// once its own earlier checks have passed.
func decodeCredentials(r *http.Request) credentials {
	var c credentials
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		return c
	}
	if err := json.Unmarshal(body, &c); err != nil {
		return credentials{}
	}
	return c
}

// markersQuery is the query of GET /api/markers.
type markersQuery struct {
	Date  string   `validate:"required,datetime=2006-01-02"`
	Users []string `validate:"dive,required,max=64"`
	// AllUsers is set when the users parameter is absent.
	AllUsers bool
}

func parseMarkersQuery(r *http.Request) (markersQuery, error) {
	q := r.URL.Query()
	mq := markersQuery{Date: q.Get("date")}
	if mq.Date == "" {
		mq.Date = mapview.DefaultDate
	}
	if !q.Has("users") {
		mq.AllUsers = true
	} else {
		for _, u := range strings.Split(q.Get("users"), ",") {
			if u = strings.TrimSpace(u); u != "" {
				mq.Users = append(mq.Users, u)
			}
		}
	}
	if err := validate.Struct(mq); err != nil {
		return markersQuery{}, err
	}
	return mq, nil
}
