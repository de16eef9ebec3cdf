package web

import (
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/gltfexport"
	"github.com/mogren/animpack/pose"
	"github.com/mogren/animpack/utils"
)

type clipInfo struct {
	Name              string  `json:"name"`
	NumBones          uint16  `json:"num_bones"`
	NumSamples        uint32  `json:"num_samples"`
	SampleRate        uint32  `json:"sample_rate"`
	Duration          float64 `json:"duration"`
	RotationFormat    string  `json:"rotation_format"`
	TranslationFormat string  `json:"translation_format"`
	RangeReduction    string  `json:"range_reduction"`
	AnimatedRotations uint32  `json:"num_animated_rotation_tracks"`
	AnimatedTrans     uint32  `json:"num_animated_translation_tracks"`
	RawSize           uint32  `json:"raw_size"`
	CompressedSize    uint32  `json:"compressed_size"`
	MaxError          float64 `json:"max_error"`
}

type posedBone struct {
	Name        string     `json:"name"`
	Rotation    [4]float32 `json:"rotation"`
	Euler       [3]float64 `json:"euler"`
	Translation [3]float32 `json:"translation"`
}

func entryFromRequest(r *http.Request) (*Entry, error) {
	name := mux.Vars(r)["name"]
	e := serverStore.Get(name)
	if e == nil {
		return nil, errors.Errorf("Unknown clip %q", name)
	}
	return e, nil
}

func HandlerClipList(w http.ResponseWriter, r *http.Request) {
	writeJson(w, serverStore.Names())
}

func HandlerClipInfo(w http.ResponseWriter, r *http.Request) {
	e, err := entryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h := e.Compressed.Header()
	writeJson(w, &clipInfo{
		Name:              e.Name,
		NumBones:          h.NumBones,
		NumSamples:        h.NumSamples,
		SampleRate:        h.SampleRate,
		Duration:          h.Duration(),
		RotationFormat:    h.RotationFormat.String(),
		TranslationFormat: h.TranslationFormat.String(),
		RangeReduction:    h.RangeReduction.String(),
		AnimatedRotations: h.NumAnimatedRotationTracks,
		AnimatedTrans:     h.NumAnimatedTranslationTracks,
		RawSize:           e.Clip.TotalSize(),
		CompressedSize:    e.Compressed.Size(),
		MaxError:          e.MaxError,
	})
}

func (e *Entry) poseAt(sampleTime float64) ([]posedBone, error) {
	numBones := int(e.Skeleton.NumBones())
	writer := pose.NewBuffer(numBones)
	if err := codec.DecompressPose(e.Compressed, float32(sampleTime), writer, numBones); err != nil {
		return nil, err
	}

	bones := make([]posedBone, numBones)
	for i := range bones {
		t := &writer.Transforms[i]
		euler := utils.QuatToEuler(pose.QuatCast64(t.Rotation))
		bones[i] = posedBone{
			Name:        e.Skeleton.Bone(uint16(i)).Name,
			Rotation:    [4]float32{t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2], t.Rotation.W},
			Euler:       [3]float64{euler[0], euler[1], euler[2]},
			Translation: [3]float32{t.Translation[0], t.Translation[1], t.Translation[2]},
		}
	}
	return bones, nil
}

func HandlerClipPose(w http.ResponseWriter, r *http.Request) {
	e, err := entryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sampleTime, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		writeError(w, errors.Errorf("Bad time parameter %q", r.URL.Query().Get("t")))
		return
	}

	bones, err := e.poseAt(sampleTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, bones)
}

func HandlerClipDump(w http.ResponseWriter, r *http.Request) {
	e, err := entryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBlob(w, e.Name+".acb", e.Compressed.Data())
}

func HandlerClipGLTF(w http.ResponseWriter, r *http.Request) {
	e, err := entryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := gltfexport.Export(e.Skeleton, e.Compressed, e.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := gltfexport.ExportBinary(&buf, doc); err != nil {
		writeError(w, err)
		return
	}
	writeBlob(w, e.Name+".glb", buf.Bytes())
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsPoseRequest struct {
	Time float64 `json:"time"`
}

// HandlerClipWebsocket streams poses as the client scrubs: one request
// with a time in, one pose out.
func HandlerClipWebsocket(w http.ResponseWriter, r *http.Request) {
	e, err := entryFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req wsPoseRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		bones, err := e.poseAt(req.Time)
		if err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}
		if err := conn.WriteJSON(bones); err != nil {
			return
		}
	}
}
