package eventview

import _ "embed"

//go:embed shaders/decay.kage
var decayShaderSrc []byte

//go:embed shaders/agecolor.kage
var ageColorShaderSrc []byte
