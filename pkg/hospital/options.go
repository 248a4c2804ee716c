package hospital

import (
	"sort"

	"github.com/lifelink-health/portal/pkg/common/models"
)

// HospitalOption is a donor-facing picker entry. ID is the hospital's owning
// principal, which is what a medical record's hospitalId must carry.
type HospitalOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options is what the donor form's cascading selects render from.
type Options struct {
	Cities    []string         `json:"cities"`
	Hospitals []HospitalOption `json:"hospitals"`
}

// DeriveOptions computes the picker state from the approved hospitals of a
// province. Pure derivation: changing province implicitly resets city and
// hospital because both lists are recomputed from scratch; an empty city
// yields cities only.
func DeriveOptions(approved []models.HospitalApplication, city string) Options {
	citySet := map[string]struct{}{}
	opts := Options{Cities: []string{}, Hospitals: []HospitalOption{}}

	for _, app := range approved {
		if app.VerificationStatus != models.VerificationApproved {
			continue
		}
		if _, seen := citySet[app.City]; !seen {
			citySet[app.City] = struct{}{}
			opts.Cities = append(opts.Cities, app.City)
		}
		if city != "" && app.City == city {
			opts.Hospitals = append(opts.Hospitals, HospitalOption{
				ID:   app.UserID.String(),
				Name: app.HospitalName,
			})
		}
	}

	sort.Strings(opts.Cities)
	sort.Slice(opts.Hospitals, func(i, j int) bool {
		return opts.Hospitals[i].Name < opts.Hospitals[j].Name
	})
	return opts
}
