package server

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

// statusParams are the query parameters accepted by the status endpoints.
type statusParams struct {
	Timezone  string `json:"timezone" validate:"required,timezone"`
	Country   string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Latitude  string `json:"latitude" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude string `json:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
}

type validatorSvc struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

func getValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{validate: v, trans: trans}
	})
	return vSvc
}

// parseQuery validates the request parameters and converts them into an
// engine query.
func parseQuery(values url.Values) (ramadan.Query, error) {
	p := statusParams{
		Timezone:  strings.TrimSpace(values.Get("timezone")),
		Country:   strings.ToUpper(strings.TrimSpace(values.Get("country"))),
		Latitude:  strings.TrimSpace(values.Get("latitude")),
		Longitude: strings.TrimSpace(values.Get("longitude")),
	}

	svc := getValidator()
	if err := svc.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ramadan.Query{}, errors.New(verrs[0].Translate(svc.trans))
		}
		return ramadan.Query{}, err
	}

	q := ramadan.Query{Timezone: p.Timezone, Country: p.Country}
	if p.Latitude != "" {
		lat, _ := strconv.ParseFloat(p.Latitude, 64)
		lon, _ := strconv.ParseFloat(p.Longitude, 64)
		q.Coordinates = &offset.Coordinates{Latitude: lat, Longitude: lon}
	}
	return q, nil
}
