package io_test

import (
	"fmt"
	"os"

	drawio "github.com/matzehuels/drawkit/pkg/io"
	"github.com/matzehuels/drawkit/pkg/model"
)

func ExampleUnmarshalDrawio() {
	const src = `<mxfile><diagram id="p1" name="Page-1"><mxGraphModel><root>` +
		`<mxCell id="0"/><mxCell id="1" parent="0"/>` +
		`<mxCell id="a" value="Hello" style="rounded=1;" vertex="1" parent="1"><mxGeometry width="120" height="60" as="geometry"/></mxCell>` +
		`</root></mxGraphModel></diagram></mxfile>`

	doc, err := drawio.UnmarshalDrawio([]byte(src), drawio.Options{})
	if err != nil {
		panic(err)
	}
	cell, _ := doc.Pages[0].Model.FindByID("a")
	fmt.Println(cell.Kind, cell.Value, cell.Style.Value("rounded"))

	out, _ := drawio.MarshalDrawio(doc, drawio.Options{})
	fmt.Println(string(out) == src)
	// Output:
	// shape Hello 1
	// true
}

func ExampleWriteDrawio() {
	doc := &model.Document{}
	page := &model.Page{ID: "p1", Name: "Empty", Model: model.NewGraphModel()}
	if err := doc.AddPage(page); err != nil {
		panic(err)
	}

	if err := drawio.WriteDrawio(doc, os.Stdout, drawio.Options{Compression: drawio.CompressionNever}); err != nil {
		panic(err)
	}
	// Output:
	// <mxfile><diagram id="p1" name="Empty"><mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel></diagram></mxfile>
}
