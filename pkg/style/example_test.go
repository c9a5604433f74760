package style_test

import (
	"fmt"

	"github.com/matzehuels/drawkit/pkg/style"
)

func ExampleDecode() {
	s := style.Decode("ellipse;whiteSpace=wrap;html=1;fillColor=#dae8fc;")

	fmt.Println(s.BaseName())
	fmt.Println(s.Value("fillColor"))
	html, _ := s.Bool("html")
	fmt.Println(html)
	// Output:
	// ellipse
	// #dae8fc
	// true
}

func ExampleEncode() {
	s := style.Decode("rounded=0;whiteSpace=wrap;html=1;")
	s.Set("fillColor", "#d5e8d4")
	s.Delete("rounded")

	out, err := style.Encode(s)
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: whiteSpace=wrap;html=1;fillColor=#d5e8d4;
}
