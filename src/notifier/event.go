package notifier

import "encoding/json"

type eventDetail struct {
	RequestParameters struct {
		UserName string `json:"userName"`
	} `json:"requestParameters"`
}

// userNameFromDetail extracts requestParameters.userName from the CloudTrail
// detail payload. Unparseable or incomplete detail yields an empty name.
func userNameFromDetail(detail json.RawMessage) string {
	var parsed eventDetail
	if err := json.Unmarshal(detail, &parsed); err != nil {
		return ""
	}
	return parsed.RequestParameters.UserName
}
