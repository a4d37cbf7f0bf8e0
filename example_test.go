package fefs_test

import (
	"fmt"

	"github.com/NotYetOS/fefs"
	"github.com/NotYetOS/fefs/internal/memdev"
)

func ExampleFileSystem_basic_usage() {
	// device could be an SD card, RAM, or anything that implements the
	// BlockDevice interface.
	device := memdev.New(fefs.BlockSize)
	fs := fefs.Create(device, fefs.BlockSize, 4)

	root := fs.Root()
	file, err := root.CreateFile("newfile.txt")
	if err != nil {
		panic(err)
	}

	err = file.Write([]byte("Hello, World!"), fefs.OverWritten)
	if err != nil {
		panic(err)
	}
	fs.Sync()

	// Read back the file.
	reopened, err := root.OpenFile("newfile.txt")
	if err != nil {
		panic(err)
	}
	var data []byte
	_, err = reopened.ReadToVec(&data)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))
	// Output:
	// Hello, World!
}
