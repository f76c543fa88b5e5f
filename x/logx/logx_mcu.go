//go:build rp2040 || rp2350

package logx

// emit writes "[tag] LEVEL msg k=v ..." on the console UART/USB CDC.
func emit(l Level, tag, msg string, attrs []Attr) {
	print("[", tag, "] ", l.String(), " ", msg)
	for i := range attrs {
		a := &attrs[i]
		print(" ", a.Key, "=")
		switch a.kind {
		case kindInt:
			print(a.i)
		case kindUint:
			print(a.u)
		case kindBool:
			print(a.b)
		default:
			print(a.s)
		}
	}
	println()
}
