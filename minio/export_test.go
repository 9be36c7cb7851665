package minio

var Classify = classify
