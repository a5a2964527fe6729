package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonSentimentGenerate    ReasonCode = "sentiment_generate"
	ReasonSentimentParse       ReasonCode = "sentiment_parse"
	ReasonSentimentTimeout     ReasonCode = "sentiment_timeout"
	ReasonSentimentRateLimit   ReasonCode = "sentiment_rate_limit"
	ReasonSentimentCircuitOpen ReasonCode = "sentiment_circuit_open"

	ReasonASRConnect ReasonCode = "asr_connect"
	ReasonASRSend    ReasonCode = "asr_send"

	ReasonTelephonyDial     ReasonCode = "telephony_dial"
	ReasonTelephonyTransfer ReasonCode = "telephony_transfer"

	ReasonTransportInvalidSignature ReasonCode = "webhook_invalid_signature"
	ReasonTransportSend             ReasonCode = "transport_send"
)
