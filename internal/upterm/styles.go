// Copyright 2022 Upbound Inc
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

package upterm

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

var (
	EyesPrefix = pterm.Prefix{
		Style: &pterm.Style{pterm.FgLightMagenta},
		Text:  " 👀",
	}

	RaisedPrefix = pterm.Prefix{
		Style: &pterm.Style{pterm.FgLightMagenta},
		Text:  " 🙌",
	}

	spinnerStyle = &pterm.Style{pterm.FgDarkGray}
	msgStyle     = &pterm.Style{pterm.FgDefault}

	CheckmarkSuccessSpinner = pterm.DefaultSpinner.WithStyle(spinnerStyle).WithMessageStyle(msgStyle)
	EyesInfoSpinner         = pterm.DefaultSpinner.WithStyle(spinnerStyle).WithMessageStyle(msgStyle)

	ComponentText = pterm.DefaultBasicText.WithStyle(&pterm.ThemeDefault.TreeTextStyle)

	cp = &pterm.PrefixPrinter{
		MessageStyle: &pterm.Style{pterm.FgDefault},
		Prefix: pterm.Prefix{
			Style: &pterm.Style{pterm.FgLightMagenta},
			Text:  " ✓ ",
		},
	}

	ip = &pterm.PrefixPrinter{
		MessageStyle: &pterm.Style{pterm.FgDefault},
		Prefix:       EyesPrefix,
	}
)

func init() {
	CheckmarkSuccessSpinner.SuccessPrinter = cp
	EyesInfoSpinner.InfoPrinter = ip
}

func WrapWithSuccessSpinner(msg string, spinner *pterm.SpinnerPrinter, f func() error) error {
	s, err := spinner.Start(msg)
	if err != nil {
		return err
	}

	if err := f(); err != nil {
		return err
	}

	s.Success()
	return nil
}

func StepCounter(msg string, index, total int) string {
	return fmt.Sprintf("[%d/%d]: %s", index, total, msg)
}

// NewCheckmarkSuccessSpinner returns a new spinner that writes to the given
// writer and prints a checkmark on success. This spinner behaves the same as
// CheckmarkSuccessSpinner but multiple of them can be used at once (in a
// single thread - pterm is not concurrency-safe) since they don't share
// state.
func NewCheckmarkSuccessSpinner(w io.Writer) *pterm.SpinnerPrinter {
	sp := pterm.DefaultSpinner
	sp.SuccessPrinter = cp
	sp.Writer = w
	sp.MessageStyle = msgStyle
	sp.Style = spinnerStyle

	return &sp
}
