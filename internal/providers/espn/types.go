package espn

import (
	"bytes"
	"encoding/json"
)

// flexScore accepts a score encoded either as a JSON string or a number.
type flexScore string

func (s *flexScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexScore(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexScore(n.String())
	return nil
}

type scoreboardResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Name         string        `json:"name"`
	Status       eventStatus   `json:"status"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	ID          string       `json:"id"`
	Status      eventStatus  `json:"status"`
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	HomeAway string    `json:"homeAway"`
	Score    flexScore `json:"score"`
	Team     struct {
		Abbreviation string `json:"abbreviation"`
		DisplayName  string `json:"displayName"`
	} `json:"team"`
}

type eventStatus struct {
	Type struct {
		State     string `json:"state"`
		Completed bool   `json:"completed"`
		Detail    string `json:"detail"`
	} `json:"type"`
}
