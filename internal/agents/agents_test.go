package agents_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/soapscribe/internal/agents"
	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm/mock"
)

func TestRouter_StoresNormalizedReplyVerbatim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		want  callstate.Disposition
	}{
		{"known category", "Authorization\n", callstate.DispositionAuthorization},
		// Membership is deliberately not enforced; unknown tags pass through
		// and take the default branch downstream.
		{"unknown category", "Billing Escalation", callstate.Disposition("billing escalation")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := &mock.Provider{Responses: []string{tc.reply}}
			st, err := agents.NewRouter(p).Process(context.Background(), callstate.New("transcript"))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if st.Disposition != tc.want {
				t.Errorf("Disposition = %q, want %q", st.Disposition, tc.want)
			}
			if len(st.Messages) != 1 {
				t.Errorf("messages = %d, want 1", len(st.Messages))
			}
		})
	}
}

func TestAuthorizationAgent_DecodesReply(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{`{
		"procedure": "MRI lumbar spine",
		"medicalNecessity": "six weeks of conservative treatment failed",
		"provider": "Dr. Okafor",
		"timeline": "within two weeks",
		"previousAttempts": "one prior denial",
		"documentation": ["physical therapy notes", "imaging order"]
	}`}}

	st, err := agents.NewAuthorizationAgent(p).Process(context.Background(), callstate.New("transcript"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	frag, ok := st.Extracted[agents.AuthorizationKey]
	if !ok {
		t.Fatal("authorization fragment not stored")
	}
	if !frag.OK() {
		t.Fatalf("fragment flagged as unparsed: %+v", frag)
	}
	details, ok := frag.Value.(*agents.AuthorizationDetails)
	if !ok {
		t.Fatalf("fragment value has type %T", frag.Value)
	}
	if details.Procedure != "MRI lumbar spine" {
		t.Errorf("Procedure = %q", details.Procedure)
	}
	if len(details.Documentation) != 2 {
		t.Errorf("Documentation = %v", details.Documentation)
	}
	if len(st.Messages) != 1 {
		t.Errorf("messages = %d, want 1", len(st.Messages))
	}
}

// A malformed reply must never abort the run: the specialist stores the raw
// text flagged with the fixed parse-failure marker and appends exactly one
// message.
func TestSpecialists_DegradeOnUnparseableReply(t *testing.T) {
	t.Parallel()

	specialists := map[string]struct {
		agent agents.Agent
		key   string
	}{
		"authorization": {agents.NewAuthorizationAgent(&mock.Provider{Responses: []string{"not json"}}), agents.AuthorizationKey},
		"claims":        {agents.NewClaimsAgent(&mock.Provider{Responses: []string{"not json"}}), agents.ClaimsKey},
		"general":       {agents.NewGeneralAgent(&mock.Provider{Responses: []string{"not json"}}), agents.GeneralKey},
	}

	for name, tc := range specialists {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			st, err := tc.agent.Process(context.Background(), callstate.New("transcript"))
			if err != nil {
				t.Fatalf("Process returned error on parse failure: %v", err)
			}

			frag := st.Extracted[tc.key]
			if frag.OK() {
				t.Fatal("fragment not flagged as unparsed")
			}
			if frag.Err != callstate.ParseFailureMessage {
				t.Errorf("Err = %q, want %q", frag.Err, callstate.ParseFailureMessage)
			}
			if frag.Raw != "not json" {
				t.Errorf("Raw = %q, want %q", frag.Raw, "not json")
			}
			if len(st.Messages) != 1 {
				t.Errorf("messages = %d, want exactly 1", len(st.Messages))
			}
		})
	}
}

func TestMedicalAgent_DegradesToRawFragment(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{"the patient takes lisinopril"}}
	st, err := agents.NewMedicalAgent(p).Process(context.Background(), callstate.New("transcript"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if st.Medical == nil {
		t.Fatal("Medical not set")
	}
	if st.Medical.OK() {
		t.Error("medical fragment not flagged as unparsed")
	}
	if st.Medical.Raw != "the patient takes lisinopril" {
		t.Errorf("Raw = %q", st.Medical.Raw)
	}
}

func TestUrgencyEngine_DefaultsToLevelZeroOnParseFailure(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{"very urgent!!"}}
	st, err := agents.NewUrgencyEngine(p).Process(context.Background(), callstate.New("transcript"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if st.Urgency == nil {
		t.Fatal("Urgency not set")
	}
	if st.Urgency.Level != 0 {
		t.Errorf("Level = %d, want 0", st.Urgency.Level)
	}
	if got := st.Urgency.Label(); got != "No urgency" {
		t.Errorf("Label = %q, want %q", got, "No urgency")
	}
}

func TestUrgencyEngine_DecodesReply(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{`{
		"level": 9,
		"indicators": {"medical": 9, "administrative": 4, "emotional": 7},
		"reasoning": "chest pain reported during the call"
	}`}}

	st, err := agents.NewUrgencyEngine(p).Process(context.Background(), callstate.New("transcript"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if st.Urgency.Level != 9 {
		t.Errorf("Level = %d, want 9", st.Urgency.Level)
	}
	if st.Urgency.Indicators.Medical != 9 || st.Urgency.Indicators.Emotional != 7 {
		t.Errorf("Indicators = %+v", st.Urgency.Indicators)
	}
	if got := st.Urgency.Label(); got != "HIGH URGENCY" {
		t.Errorf("Label = %q", got)
	}
}

func TestSentimentEngine_AppliesThresholdLabels(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{`{"score": -6.5, "explanation": "caller repeatedly frustrated"}`}}
	st, err := agents.NewSentimentEngine(p).Process(context.Background(), callstate.New("transcript"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if st.Sentiment == nil {
		t.Fatal("Sentiment not set")
	}
	if st.Sentiment.Score != -6.5 {
		t.Errorf("Score = %v", st.Sentiment.Score)
	}
	if st.Sentiment.Label != callstate.SentimentNegative {
		t.Errorf("Label = %q, want %q", st.Sentiment.Label, callstate.SentimentNegative)
	}
}

func TestSentimentEngine_DefaultsToNeutralOnParseFailure(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{"they seemed fine"}}
	st, err := agents.NewSentimentEngine(p).Process(context.Background(), callstate.New("transcript"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if st.Sentiment.Score != 0 || st.Sentiment.Label != callstate.SentimentNeutral {
		t.Errorf("Sentiment = %+v, want neutral score 0", st.Sentiment)
	}
}

func TestSOAPGenerator_ParsesNoteAndCountsWords(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{
		"SUBJECTIVE: member reports pain\nOBJECTIVE: identity verified\nASSESSMENT: referral needed\nPLAN: submit referral",
	}}

	st := callstate.New("transcript")
	st.Disposition = callstate.DispositionAuthorization

	out, err := agents.NewSOAPGenerator(p).Process(context.Background(), st)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if out.Note.Subjective != "member reports pain" {
		t.Errorf("Subjective = %q", out.Note.Subjective)
	}
	if len(out.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(out.Messages))
	}
	if !strings.Contains(out.Messages[0].Content, "subjective 3") {
		t.Errorf("summary message = %q, want word counts", out.Messages[0].Content)
	}

	// The prompt must carry both the state snapshot and the transcript.
	user := p.Calls[0].UserPrompt
	if !strings.Contains(user, `"disposition"`) || !strings.Contains(user, "transcript") {
		t.Errorf("user prompt missing state snapshot or transcript: %q", user)
	}
}

func TestAgents_TransportFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("dial tcp: connection refused")
	all := []agents.Agent{
		agents.NewRouter(&mock.Provider{Err: boom}),
		agents.NewAuthorizationAgent(&mock.Provider{Err: boom}),
		agents.NewClaimsAgent(&mock.Provider{Err: boom}),
		agents.NewGeneralAgent(&mock.Provider{Err: boom}),
		agents.NewMedicalAgent(&mock.Provider{Err: boom}),
		agents.NewUrgencyEngine(&mock.Provider{Err: boom}),
		agents.NewSentimentEngine(&mock.Provider{Err: boom}),
		agents.NewSOAPGenerator(&mock.Provider{Err: boom}),
	}

	for _, a := range all {
		if _, err := a.Process(context.Background(), callstate.New("t")); !errors.Is(err, boom) {
			t.Errorf("%s: err = %v, want wrapped transport failure", a.Name(), err)
		}
	}
}
