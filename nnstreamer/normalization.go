package nnstreamer

type Normalization string

const (
	NormNone            Normalization = "none"
	NormCentered        Normalization = "centered"
	NormReduced         Normalization = "reduced"
	NormCenteredReduced Normalization = "centeredReduced"
	NormCastInt32       Normalization = "castInt32"
	NormCastUInt8       Normalization = "castuInt8"
)

var normTransforms = map[Normalization]string{
	NormNone:            "",
	NormCentered:        "tensor_transform mode=arithmetic option=typecast:int16,add:-128 ! tensor_transform mode=typecast option=int8 ! ",
	NormReduced:         "tensor_transform mode=arithmetic option=typecast:float32,div:255 ! ",
	NormCenteredReduced: "tensor_transform mode=arithmetic option=typecast:float32,add:-127.5,div:127.5 ! ",
	NormCastInt32:       "tensor_transform mode=typecast option=int32 ! ",
	NormCastUInt8:       "tensor_transform mode=typecast option=uint8 ! ",
}

// ParseNormalization returns NormNone for names it does not know.
func ParseNormalization(s string) Normalization {
	if _, ok := normTransforms[Normalization(s)]; ok {
		return Normalization(s)
	}
	return NormNone
}

// Transform is the tensor_transform chain placed between tensor_converter and tensor_filter.
func (n Normalization) Transform() string {
	return normTransforms[n]
}
