package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"twitchchat/internal/app/adapters/platform/twitch/parse"
	"twitchchat/internal/app/domain"
	"twitchchat/pkg/logger"
)

// record is one parsed line as printed on stdout.
type record struct {
	Type    domain.MessageType   `json:"type"`
	Message domain.TwitchMessage `json:"message,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// Reads raw IRC lines from stdin and prints what the parser makes of them,
// one JSON object per line. Images are never resolved.
func main() {
	if err := run(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	p := parse.New(nil, nil, logger.Discard())
	enc := json.NewEncoder(out)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		msg, err := p.Parse(ctx, line)
		rec := record{Type: domain.TypeUnknown}
		if err != nil {
			rec.Error = err.Error()
		} else if msg != nil {
			rec.Type, rec.Message = msg.Type(), msg
		}

		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return sc.Err()
}
