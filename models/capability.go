package models

// ImageCrop is an encoded image buffer exchanged with the capability services
type ImageCrop []byte
