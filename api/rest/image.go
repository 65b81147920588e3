package rest

import (
	"context"
	"edgeresizer/api/model"
	"edgeresizer/config"
	"edgeresizer/service"
	"edgeresizer/shared/apperror"
	"edgeresizer/shared/log"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CacheControl advises downstream caches to keep variants for about a month;
// the proxy itself stores nothing.
const CacheControl = "max-age=2629746"

type ImageController struct {
	cfg     *config.Config
	service *service.ImageService
	logger  *zap.Logger
}

func NewImageController(app fiber.Router, cfg *config.Config, service *service.ImageService, logger *zap.Logger) *ImageController {
	i := &ImageController{service: service, cfg: cfg, logger: logger}

	app.Get("/", i.Transform)
	app.Get("/worker-version", i.Version)

	return i
}

// Transform image
//
//	@Summary		Resize and re-encode a remote image
//	@Description	Fetches src, scales it to width w keeping the aspect ratio and encodes it as avif, webp or jpeg depending on the Accept header.
//	@Tags			image
//	@Produce		image/jpeg,image/webp,image/avif
//	@Param			src	query		string	true	"Absolute URL of the origin image"
//	@Param			w	query		int		true	"Target width"
//	@Param			q	query		int		false	"Quality 1-100"	default(80)
//	@Success		200	{file}		file	"Returns the transformed image"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/ [get]
func (i *ImageController) Transform(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), i.cfg.RequestTimeout())
	defer cancel()
	logger := log.LoggerWithTrace(ctx, i.logger)

	query := model.ImageQuery{}
	if err := c.QueryParser(&query); err != nil {
		logger.Debug("Error parsing query", zap.Error(err))
		return apperror.InvalidParameter("query", err)
	}

	req, err := service.ResolveRequest(query, c.Get(fiber.HeaderAccept), i.cfg.MaxWidth)
	if err != nil {
		logger.Debug("Rejected transform request", zap.Error(err))
		return err
	}

	image, err := i.service.Transform(ctx, req)
	if err != nil {
		logger.Warn("Error transforming image", zap.String("src", req.SourceURL.Redacted()), zap.Error(err))
		return err
	}

	return writeImage(c, image)
}

// Version
//
//	@Summary	Deployed build identifier
//	@Tags		meta
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/worker-version [get]
func (i *ImageController) Version(c *fiber.Ctx) error {
	return c.SendString(i.cfg.Version)
}

func writeImage(c *fiber.Ctx, image *model.ImageResponse) error {
	c.Set(fiber.HeaderContentType, image.Type)
	c.Set(fiber.HeaderCacheControl, CacheControl)
	c.Set(fiber.HeaderAccessControlAllowHeaders, fiber.HeaderContentType)
	c.Set(fiber.HeaderVary, fiber.HeaderAccept)

	return c.Status(fiber.StatusOK).SendStream(image.Body, int(image.ContentLength))
}
