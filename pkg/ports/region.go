package ports

import "image"

// Region is the area handed to a Refresher.
type Region = image.Rectangle
