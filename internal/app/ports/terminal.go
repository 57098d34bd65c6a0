package ports

type ImageEncoderPort interface {
	Encode(png []byte) string
	EncodeBase64(payload string) string
}
