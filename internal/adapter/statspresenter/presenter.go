package statspresenter

import (
	"encoding/base64"
	"strings"
)

// Presenter delivers formatted messages and chart images without coupling to the command layer.
type Presenter struct {
	sendMessage func(room, message string) error
	sendImage   func(room, imageBase64 string) error
}

func NewPresenter(sendMessage func(room, message string) error, sendImage func(room, imageBase64 string) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

func (p *Presenter) Text(room, message string) error {
	if p == nil || p.sendMessage == nil {
		return nil
	}
	if strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(room, message)
}

// Chart sends an optional caption followed by the rendered PNG.
func (p *Presenter) Chart(room, caption string, png []byte) error {
	if p == nil {
		return nil
	}
	if text := strings.TrimSpace(caption); text != "" && p.sendMessage != nil {
		if err := p.sendMessage(room, caption); err != nil {
			return err
		}
	}
	if len(png) > 0 && p.sendImage != nil {
		encoded := base64.StdEncoding.EncodeToString(png)
		if err := p.sendImage(room, encoded); err != nil {
			return err
		}
	}
	return nil
}
