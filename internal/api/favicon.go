// SPDX-License-Identifier: MIT

package api

import (
	"encoding/base64"
	"net/http"
)

// faviconICO is a 16x16 single-color icon, embedded so the daemon has
// no runtime asset dependencies.
var faviconICO, _ = base64.StdEncoding.DecodeString(
	"AAABAAEAEBAAAAEAIABoBAAAFgAAACgAAAAQAAAAIAAAAAEAIAAAAAAAQAQAAAAAAAAAAAAA" +
		"AAAAAAAAAADotUr/6LVK/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUi" +
		"Hf81Ih3/NSId/zUiHf81Ih3/6LVK/+i1Sv/otUr/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/" +
		"NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf/otUr/6LVK/+i1Sv81Ih3/NSId/zUi" +
		"Hf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/+i1Sv/otUr/" +
		"6LVK/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUi" +
		"Hf81Ih3/6LVK/+i1Sv/otUr/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/" +
		"NSId/zUiHf81Ih3/NSId/zUiHf/otUr/6LVK/+i1Sv81Ih3/NSId/zUiHf81Ih3/NSId/zUi" +
		"Hf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/+i1Sv/otUr/6LVK/zUiHf81Ih3/" +
		"NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/6LVK/+i1" +
		"Sv/otUr/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/" +
		"NSId/zUiHf/otUr/6LVK/+i1Sv81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUi" +
		"Hf81Ih3/NSId/zUiHf81Ih3/NSId/+i1Sv/otUr/6LVK/zUiHf81Ih3/NSId/zUiHf81Ih3/" +
		"NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/6LVK/+i1Sv/otUr/NSId/zUi" +
		"Hf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf/otUr/" +
		"6LVK/+i1Sv81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUi" +
		"Hf81Ih3/NSId/+i1Sv/otUr/6LVK/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/" +
		"NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/6LVK/+i1Sv/otUr/NSId/zUiHf81Ih3/NSId/zUi" +
		"Hf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf/otUr/6LVK/+i1Sv81Ih3/" +
		"NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/zUiHf81Ih3/NSId/+i1" +
		"Sv/otUr/AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA" +
		"AAAAAAAAAAAAAAAAAAAAAA==")

// favicon serves the embedded icon.
func favicon(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/x-icon")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(faviconICO)
}
