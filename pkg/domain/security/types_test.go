package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{input: "low", want: Low},
		{input: "Medium", want: Medium},
		{input: " HIGH ", want: High},
		{input: "critical", want: Critical},
		{input: "urgent", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverity_Order(t *testing.T) {
	assert.Less(t, int(Low), int(Medium))
	assert.Less(t, int(Medium), int(High))
	assert.Less(t, int(High), int(Critical))
	assert.False(t, Severity(0).Valid())
	assert.False(t, Severity(5).Valid())
}

func TestSeverity_Text(t *testing.T) {
	text, err := High.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "high", string(text))

	_, err = Severity(9).MarshalText()
	assert.Error(t, err)

	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("critical")))
	assert.Equal(t, Critical, s)
}

func TestEventType_Valid(t *testing.T) {
	for _, et := range []EventType{AccessViolation, SessionTamper, DevtoolsDetected, SuspiciousActivity, AuthenticationFailure} {
		assert.True(t, et.Valid(), et)
	}
	assert.False(t, EventType("phishing").Valid())
}

func TestDetails_EventType(t *testing.T) {
	tests := []struct {
		details Details
		want    EventType
	}{
		{details: StorageAccessDetails{}, want: SuspiciousActivity},
		{details: SessionTamperDetails{}, want: SessionTamper},
		{details: InjectionAttemptDetails{}, want: SuspiciousActivity},
		{details: CSRFAttemptDetails{}, want: SuspiciousActivity},
		{details: DevtoolsOpenedDetails{}, want: DevtoolsDetected},
		{details: AccessViolationDetails{}, want: AccessViolation},
		{details: AuthenticationFailureDetails{}, want: AuthenticationFailure},
	}
	for _, tt := range tests {
		t.Run(tt.details.Kind(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.details.EventType())
		})
	}
}

func TestDecodeDetails(t *testing.T) {
	d, err := DecodeDetails(KindDevtoolsOpened, map[string]interface{}{"width_delta": "200", "height_delta": 12})
	require.NoError(t, err)
	assert.Equal(t, DevtoolsOpenedDetails{WidthDelta: 200, HeightDelta: 12}, d)

	d, err = DecodeDetails(KindSessionTamper, map[string]interface{}{
		"reason":         "invalid_user_data",
		"missing_fields": []interface{}{"id", "role"},
	})
	require.NoError(t, err)
	assert.Equal(t, SessionTamperDetails{Reason: ReasonInvalidUserData, MissingFields: []string{"id", "role"}}, d)

	_, err = DecodeDetails("phishing", nil)
	assert.ErrorContains(t, err, "unknown details kind")
}
