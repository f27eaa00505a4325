package ocr

// Box is a 4-corner text region polygon as emitted by the OCR stage,
// ordered clockwise from the top-left corner.
type Box [4][2]float64

// Enclose returns the axis-aligned box covering every corner of every
// input box, as [[left,top],[right,top],[right,bottom],[left,bottom]]
// integer pixel coordinates.
func Enclose(boxes []Box) [4][2]int {
	if len(boxes) == 0 {
		return [4][2]int{}
	}
	left, top := boxes[0][0][0], boxes[0][0][1]
	right, bottom := left, top
	for _, box := range boxes {
		for _, corner := range box {
			x, y := corner[0], corner[1]
			if x < left {
				left = x
			}
			if x > right {
				right = x
			}
			if y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
		}
	}
	l, t, r, b := int(left), int(top), int(right), int(bottom)
	return [4][2]int{{l, t}, {r, t}, {r, b}, {l, b}}
}
