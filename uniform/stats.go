package uniform

import (
	"fmt"
	"io"

	"github.com/mogren/animpack/compressed"
)

func (a *Algorithm) PrintStats(cc *compressed.Clip, w io.Writer) {
	h := cc.Header()
	numAnimatedTracks := h.NumAnimatedRotationTracks + h.NumAnimatedTranslationTracks

	fmt.Fprintf(w, "Clip rotation format: %s\n", h.RotationFormat)
	fmt.Fprintf(w, "Clip translation format: %s\n", h.TranslationFormat)
	fmt.Fprintf(w, "Clip range reduction: %s\n", h.RangeReduction)
	fmt.Fprintf(w, "Clip num bones: %d\n", h.NumBones)
	fmt.Fprintf(w, "Clip num samples: %d at %d Hz\n", h.NumSamples, h.SampleRate)
	fmt.Fprintf(w, "Clip num animated tracks: %d\n", numAnimatedTracks)
}
