// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

const (
	StatusQueued  = 100
	StatusRunning = 101
)

// IsTerminal reports whether a status code ends polling. Every code above StatusRunning is
// terminal; telling success from failure is left to whoever reads the report.
func IsTerminal(status int) bool {
	return status > StatusRunning
}

// Job tracks one scan for the length of a single run.
type Job struct {
	WebhookID string
	ScanID    string
	Status    int
	Polls     int
}

func NewJob(webhookID, scanID string) *Job {
	return &Job{
		WebhookID: webhookID,
		ScanID:    scanID,
		Status:    StatusQueued,
	}
}

// HeaderAuthorization is one header the scanner sends to the target application.
type HeaderAuthorization struct {
	Title string `json:"title" jsonschema:"title=Title,description=Display name of the parameter"`
	Key   string `json:"key" jsonschema:"title=Key,description=HTTP header name"`
	Value string `json:"value" jsonschema:"title=Value,description=HTTP header value"`
}

// SystemAccount is the header pair identifying the scanning account to the target.
type SystemAccount struct {
	Name  string
	Value string
}

// AnalysisProfileParameters are the inbound authentication settings pushed to an analysis
// profile before a client credentials scan.
type AnalysisProfileParameters struct {
	ProfileID            string
	HeaderAuthorizations []HeaderAuthorization
}

// NewAnalysisProfileParameters builds the bearer token header followed by the system account header.
func NewAnalysisProfileParameters(profileID, token string, account SystemAccount) AnalysisProfileParameters {
	return AnalysisProfileParameters{
		ProfileID: profileID,
		HeaderAuthorizations: []HeaderAuthorization{
			{
				Title: "Auth",
				Key:   "Authorization",
				Value: "Bearer " + token,
			},
			{
				Title: "SystemAccount",
				Key:   account.Name,
				Value: account.Value,
			},
		},
	}
}

type parameterAuthentication struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (p AnalysisProfileParameters) wireFormat() []parameterAuthentication {
	out := make([]parameterAuthentication, 0, len(p.HeaderAuthorizations))
	for _, h := range p.HeaderAuthorizations {
		out = append(out, parameterAuthentication{
			Title: h.Title,
			Type:  "HTTP_HEADER",
			Key:   h.Key,
			Value: h.Value,
		})
	}

	return out
}

type startScanResponse struct {
	Data *struct {
		ScanID *string `json:"scanId"`
	} `json:"data"`
}

type statusResponse struct {
	Data *struct {
		Status *struct {
			StatusCode *int `json:"status_code"`
		} `json:"status"`
	} `json:"data"`
}

type analysisProfilesResponse struct {
	Embedded *struct {
		AnalysisProfiles []struct {
			AnalysisProfileID *string `json:"analysis_profile_id"`
		} `json:"analysis_profiles"`
	} `json:"_embedded"`
}

type apiErrorResponse struct {
	Message string `json:"message"`
}
