package sweep

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"github.com/tourops/backoffice/pkg/rules"
)

// NewHTTPSource polls a detection endpoint of the core back-office API
// (e.g. /detections/slot_missing_guide) that returns a json array of
// event attribute maps, one per finding, and turns each row into an
// event for the given trigger.
func NewHTTPSource(baseURL string, authToken string, trigger string) Source {
	client := req.C().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if len(authToken) > 0 {
		client.SetCommonBearerAuthToken(authToken)
	}

	return func() ([]*rules.Event, error) {
		resp, err := client.R().Get("/detections/" + trigger)
		if err != nil {
			return nil, err
		}
		if resp.IsErrorState() {
			return nil, fmt.Errorf("detection endpoint: %s", resp.Status)
		}

		var findings []map[string]interface{}
		if err := json.Unmarshal(resp.Bytes(), &findings); err != nil {
			return nil, err
		}

		events := make([]*rules.Event, 0, len(findings))
		for _, finding := range findings {
			data, err := json.Marshal(finding)
			if err != nil {
				return nil, err
			}
			events = append(events, &rules.Event{
				Received: time.Now().UTC(),
				Trigger:  trigger,
				Data:     data,
			})
		}
		return events, nil
	}
}
