package clipfile

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"

	"github.com/mogren/animpack/clip"
)

// The file is a flat list of `name = value` sections. Values are strings,
// numbers, `{ name = value ... }` objects or `[ value ... ]` arrays; commas
// between array elements are optional.

type parser struct {
	tokens []*lexmachine.Token
	pos    int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() *lexmachine.Token {
	return p.tokens[p.pos]
}

func (p *parser) next() *lexmachine.Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(tokenType int) (*lexmachine.Token, error) {
	if p.eof() {
		return nil, errors.Errorf("Unexpected end of file")
	}
	t := p.next()
	if t.Type != tokenType {
		return nil, errors.Errorf("Unexpected token %q on line %d", string(t.Lexeme), t.StartLine)
	}
	return t, nil
}

func (p *parser) parseValue() (interface{}, error) {
	if p.eof() {
		return nil, errors.Errorf("Unexpected end of file")
	}
	t := p.next()
	switch t.Type {
	case TOKEN_STRING:
		s, err := strconv.Unquote(string(t.Lexeme))
		if err != nil {
			return nil, errors.Errorf("Bad string on line %d (%q)", t.StartLine, t.Lexeme)
		}
		return s, nil
	case TOKEN_NUMBER:
		f, err := strconv.ParseFloat(string(t.Lexeme), 64)
		if err != nil {
			return nil, errors.Errorf("Bad number on line %d (%q)", t.StartLine, t.Lexeme)
		}
		return f, nil
	case TOKEN_LBRACE:
		obj := make(map[string]interface{})
		for {
			if p.eof() {
				return nil, errors.Errorf("Unterminated object")
			}
			if p.peek().Type == TOKEN_RBRACE {
				p.next()
				return obj, nil
			}
			name, err := p.expect(TOKEN_IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TOKEN_EQUALS); err != nil {
				return nil, err
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			obj[string(name.Lexeme)] = v
		}
	case TOKEN_LBRACKET:
		arr := make([]interface{}, 0)
		for {
			if p.eof() {
				return nil, errors.Errorf("Unterminated array")
			}
			switch p.peek().Type {
			case TOKEN_RBRACKET:
				p.next()
				return arr, nil
			case TOKEN_COMMA:
				p.next()
			default:
				v, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
		}
	}
	return nil, errors.Errorf("Unexpected token %q on line %d", string(t.Lexeme), t.StartLine)
}

func parseSections(text []byte) (map[string]interface{}, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	sections := make(map[string]interface{})
	for !p.eof() {
		name, err := p.expect(TOKEN_IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_EQUALS); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse section %q", name.Lexeme)
		}
		sections[string(name.Lexeme)] = v
	}
	return sections, nil
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

func objFloat(obj map[string]interface{}, name string, def float64) float64 {
	if f, ok := obj[name].(float64); ok {
		return f
	}
	return def
}

func objString(obj map[string]interface{}, name string) string {
	s, _ := obj[name].(string)
	return s
}

func objFloatArray(obj map[string]interface{}, name string) []float64 {
	arr, ok := obj[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

func quatFromArray(a []float64) mgl64.Quat {
	if len(a) != 4 {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: a[3], V: mgl64.Vec3{a[0], a[1], a[2]}}
}

func vec3FromArray(a []float64) mgl64.Vec3 {
	if len(a) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{a[0], a[1], a[2]}
}

// Read parses a textual clip file into a skeleton and a raw clip. The text
// must be UTF-8; callers with clips in a legacy codepage convert first via
// config.DecodeClipText.
func Read(data []byte) (*clip.RigidSkeleton, *clip.AnimationClip, error) {
	sections, err := parseSections(data)
	if err != nil {
		return nil, nil, err
	}

	clipSection, ok := asObject(sections["clip"])
	if !ok {
		return nil, nil, errors.Errorf("Missing clip section")
	}
	boneList, ok := sections["bones"].([]interface{})
	if !ok {
		return nil, nil, errors.Errorf("Missing bones section")
	}

	bones := make([]clip.Bone, 0, len(boneList))
	for i, v := range boneList {
		obj, ok := asObject(v)
		if !ok {
			return nil, nil, errors.Errorf("Bone %d is not an object", i)
		}
		b := clip.Bone{
			Name:            objString(obj, "name"),
			Parent:          clip.InvalidBoneIndex,
			VertexDistance:  objFloat(obj, "vertex_distance", 0),
			BindRotation:    quatFromArray(objFloatArray(obj, "bind_rotation")),
			BindTranslation: vec3FromArray(objFloatArray(obj, "bind_translation")),
			BindScale:       mgl64.Vec3{1, 1, 1},
		}
		if scale := objFloatArray(obj, "bind_scale"); len(scale) == 3 {
			b.BindScale = vec3FromArray(scale)
		}
		if parentName := objString(obj, "parent"); parentName != "" {
			for j := range bones {
				if bones[j].Name == parentName {
					b.Parent = uint16(j)
					break
				}
			}
			if b.Parent == clip.InvalidBoneIndex {
				return nil, nil, errors.Errorf("Bone %q has unknown parent %q", b.Name, parentName)
			}
		}
		bones = append(bones, b)
	}

	skeleton, err := clip.NewRigidSkeleton(bones)
	if err != nil {
		return nil, nil, err
	}

	numSamples := uint32(objFloat(clipSection, "num_samples", 0))
	sampleRate := uint32(objFloat(clipSection, "sample_rate", 0))
	animClip, err := clip.NewAnimationClip(skeleton, numSamples, sampleRate, objString(clipSection, "name"))
	if err != nil {
		return nil, nil, err
	}
	animClip.SetErrorThreshold(objFloat(clipSection, "error_threshold", 0))

	if trackList, ok := sections["tracks"].([]interface{}); ok {
		for i, v := range trackList {
			obj, ok := asObject(v)
			if !ok {
				return nil, nil, errors.Errorf("Track %d is not an object", i)
			}
			name := objString(obj, "name")
			boneIndex := skeleton.BoneIndexByName(name)
			if boneIndex == clip.InvalidBoneIndex {
				return nil, nil, errors.Errorf("Track %d targets unknown bone %q", i, name)
			}

			if rotations, ok := obj["rotations"].([]interface{}); ok {
				if len(rotations) != int(numSamples) {
					return nil, nil, errors.Errorf("Bone %q has %d rotation samples, clip has %d", name, len(rotations), numSamples)
				}
				for s, rv := range rotations {
					arr, _ := rv.([]interface{})
					sample := make([]float64, 0, 4)
					for _, f := range arr {
						if fv, ok := f.(float64); ok {
							sample = append(sample, fv)
						}
					}
					animClip.SetRotationSample(boneIndex, uint32(s), quatFromArray(sample))
				}
			}

			if translations, ok := obj["translations"].([]interface{}); ok {
				if len(translations) != int(numSamples) {
					return nil, nil, errors.Errorf("Bone %q has %d translation samples, clip has %d", name, len(translations), numSamples)
				}
				for s, tv := range translations {
					arr, _ := tv.([]interface{})
					sample := make([]float64, 0, 3)
					for _, f := range arr {
						if fv, ok := f.(float64); ok {
							sample = append(sample, fv)
						}
					}
					animClip.SetTranslationSample(boneIndex, uint32(s), vec3FromArray(sample))
				}
			}

			// scales are parsed structurally but there is no scale track kind
		}
	}

	return skeleton, animClip, nil
}
